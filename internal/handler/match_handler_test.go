package handler

import (
	"net/http"
	"testing"

	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/service"
)

func TestMatchHandler_CreateValidation(t *testing.T) {
	app := newTestApp(t)
	m := app.marketplace(t)
	outsider := app.register(t, "outsider@example.com")

	tests := map[string]struct {
		body       string
		userID     string
		wantStatus int
	}{
		"unknown action":   {body: `{"businessId":"` + m.businessID + `","buyerId":"` + m.profileID + `","action":"maybe"}`, userID: m.sellerID, wantStatus: http.StatusBadRequest},
		"missing business": {body: `{"buyerId":"` + m.profileID + `","action":"accept"}`, userID: m.sellerID, wantStatus: http.StatusBadRequest},
		"unknown business": {body: `{"businessId":"nope","buyerId":"` + m.profileID + `","action":"accept"}`, userID: m.sellerID, wantStatus: http.StatusNotFound},
		"not a party":      {body: `{"businessId":"` + m.businessID + `","buyerId":"` + m.profileID + `","action":"accept"}`, userID: outsider, wantStatus: http.StatusForbidden},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec, _ := app.do(t, app.matches.Create, call{method: http.MethodPost, target: "/api/matches/create", body: tc.body, userID: tc.userID})
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMatchHandler_MutualAcceptance(t *testing.T) {
	app := newTestApp(t)
	m := app.marketplace(t)

	body := `{"businessId":"` + m.businessID + `","buyerId":"` + m.profileID + `","action":"accept"}`
	rec, env := app.do(t, app.matches.Create, call{method: http.MethodPost, target: "/api/matches/create", body: body, userID: m.sellerID})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	first := decodeData[service.MatchResult](t, env)
	if first.Match.Status != entity.MatchPending || first.Deal != nil {
		t.Fatalf("expected a pending match without deal, got %+v", first)
	}
	if first.Match.AICompatibilityScore == nil {
		t.Fatalf("expected a compatibility score on a new match")
	}

	rec, env = app.do(t, app.matches.Act, call{
		method: http.MethodPut,
		target: "/api/matches/" + first.Match.ID,
		body:   `{"action":"accept"}`,
		userID: m.buyerID,
		params: map[string]string{"id": first.Match.ID},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	second := decodeData[service.MatchResult](t, env)
	if second.Match.Status != entity.MatchAccepted || second.Deal == nil {
		t.Fatalf("expected an accepted match with a deal, got %+v", second)
	}
	if second.Deal.CurrentStage != entity.StageInitialDiscussion || second.Deal.StageProgress != 10 {
		t.Fatalf("unexpected initial deal: %+v", second.Deal)
	}

	t.Run("closed match", func(t *testing.T) {
		rec, _ := app.do(t, app.matches.Act, call{
			method: http.MethodPut,
			target: "/api/matches/" + first.Match.ID,
			body:   `{"action":"reject"}`,
			userID: m.sellerID,
			params: map[string]string{"id": first.Match.ID},
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("list for both sides", func(t *testing.T) {
		for _, userID := range []string{m.sellerID, m.buyerID} {
			rec, env := app.do(t, app.matches.List, call{method: http.MethodGet, target: "/api/matches", userID: userID})
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if matches := decodeData[[]entity.Match](t, env); len(matches) != 1 {
				t.Fatalf("expected one match for %s, got %d", userID, len(matches))
			}
		}
	})
}

func TestDiscoveryHandler(t *testing.T) {
	app := newTestApp(t)
	m := app.marketplace(t)

	rec, env := app.do(t, app.discovery.Buyers, call{method: http.MethodGet, target: "/api/discover/buyers", userID: m.sellerID})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	buyers := decodeData[[]service.ScoredBuyer](t, env)
	if len(buyers) != 1 || buyers[0].ID != m.profileID {
		t.Fatalf("unexpected buyers feed: %s", env.Data)
	}

	rec, env = app.do(t, app.discovery.Businesses, call{method: http.MethodGet, target: "/api/discover/businesses", userID: m.buyerID})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	businesses := decodeData[[]service.ScoredBusiness](t, env)
	if len(businesses) != 1 || businesses[0].ID != m.businessID {
		t.Fatalf("unexpected businesses feed: %s", env.Data)
	}

	rec, env = app.do(t, app.discovery.Businesses, call{method: http.MethodGet, target: "/api/discover/businesses", userID: m.sellerID})
	if rec.Code != http.StatusNotFound || env.Message != "buyer profile required" {
		t.Fatalf("expected 404 buyer profile required, got %d %q", rec.Code, env.Message)
	}
}
