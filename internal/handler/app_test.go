package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/dealmatch/internal/ai"
	"github.com/octobees/dealmatch/internal/auth"
	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/filestore"
	"github.com/octobees/dealmatch/internal/middleware"
	"github.com/octobees/dealmatch/internal/repository"
	"github.com/octobees/dealmatch/internal/service"
)

const testMaxUpload = 1 << 20

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// testApp wires every handler over an in-memory store and a degraded advisor.
type testApp struct {
	e     *echo.Echo
	store *repository.MemoryStore
	jwt   *auth.JWTManager

	auth      *AuthHandler
	profiles  *ProfileHandler
	discovery *DiscoveryHandler
	matches   *MatchHandler
	deals     *DealHandler
	documents *DocumentHandler
	messages  *MessageHandler
	ai        *AIHandler

	authService *service.AuthService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := repository.NewMemoryStore()
	jwtManager := auth.NewJWTManager("test-secret", 0)
	advisor := ai.NewAdvisor(nil)
	files, err := filestore.NewLocalStore(t.TempDir(), testMaxUpload)
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}

	authService := service.NewAuthService(store, jwtManager, nil)
	dealService := service.NewDealService(store, advisor, nil, nil, nil)
	insightService := service.NewInsightService(store, advisor)

	return &testApp{
		e:           echo.New(),
		store:       store,
		jwt:         jwtManager,
		auth:        NewAuthHandler(authService),
		profiles:    NewProfileHandler(service.NewProfileService(store, nil, authService)),
		discovery:   NewDiscoveryHandler(service.NewDiscoveryService(store, advisor, nil)),
		matches:     NewMatchHandler(service.NewMatchService(store, advisor, nil, nil, nil)),
		deals:       NewDealHandler(dealService),
		documents:   NewDocumentHandler(service.NewDocumentService(store, files, advisor, nil, nil), testMaxUpload),
		messages:    NewMessageHandler(service.NewMessageService(store, nil, nil)),
		ai:          NewAIHandler(insightService, dealService),
		authService: authService,
	}
}

type call struct {
	method      string
	target      string
	body        string
	contentType string
	userID      string
	params      map[string]string
}

func (a *testApp) do(t *testing.T, h echo.HandlerFunc, in call) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var body io.Reader
	if in.body != "" {
		body = strings.NewReader(in.body)
	}
	req := httptest.NewRequest(in.method, in.target, body)
	contentType := in.contentType
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := a.e.NewContext(req, rec)
	if in.userID != "" {
		c.Set(middleware.ContextKeyUserID, in.userID)
	}
	if len(in.params) > 0 {
		names := make([]string, 0, len(in.params))
		values := make([]string, 0, len(in.params))
		for name, value := range in.params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	if err := h(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("failed to decode data %s: %v", env.Data, err)
	}
	return out
}

func (a *testApp) register(t *testing.T, email string) string {
	t.Helper()
	resp, err := a.authService.Register(context.Background(), dto.RegisterRequest{Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return resp.User.ID
}

// marketplace is a seller with a listed business and a buyer looking in the same industry.
type marketplace struct {
	sellerID   string
	buyerID    string
	businessID string
	profileID  string
}

func (a *testApp) marketplace(t *testing.T) marketplace {
	t.Helper()

	m := marketplace{
		sellerID: a.register(t, "seller@example.com"),
		buyerID:  a.register(t, "buyer@example.com"),
	}

	rec, env := a.do(t, a.profiles.CompleteOnboarding, call{
		method: "POST",
		target: "/api/onboarding/complete",
		body:   `{"userType":"seller","businessData":{"name":"Acme Cloud","industry":"Technology","askingPrice":2500000}}`,
		userID: m.sellerID,
	})
	if rec.Code != 200 {
		t.Fatalf("seller onboarding: %d %s", rec.Code, rec.Body.String())
	}
	m.businessID = decodeData[service.OnboardingResult](t, env).Business.ID

	rec, env = a.do(t, a.profiles.CompleteOnboarding, call{
		method: "POST",
		target: "/api/onboarding/complete",
		body:   `{"userType":"buyer","buyerData":{"budgetRange":"1M-5M","preferredIndustries":["technology"]}}`,
		userID: m.buyerID,
	})
	if rec.Code != 200 {
		t.Fatalf("buyer onboarding: %d %s", rec.Code, rec.Body.String())
	}
	m.profileID = decodeData[service.OnboardingResult](t, env).BuyerProfile.ID
	return m
}

// deal drives the pair to mutual acceptance and returns the created deal id.
func (a *testApp) deal(t *testing.T, m marketplace) string {
	t.Helper()

	body := `{"businessId":"` + m.businessID + `","buyerId":"` + m.profileID + `","action":"accept"}`
	if rec, _ := a.do(t, a.matches.Create, call{method: "POST", target: "/api/matches/create", body: body, userID: m.sellerID}); rec.Code != 200 {
		t.Fatalf("seller accept: %d %s", rec.Code, rec.Body.String())
	}
	rec, env := a.do(t, a.matches.Create, call{method: "POST", target: "/api/matches/create", body: body, userID: m.buyerID})
	if rec.Code != 200 {
		t.Fatalf("buyer accept: %d %s", rec.Code, rec.Body.String())
	}
	result := decodeData[service.MatchResult](t, env)
	if result.Deal == nil {
		t.Fatalf("expected a deal after mutual acceptance, got %s", env.Data)
	}
	return result.Deal.ID
}
