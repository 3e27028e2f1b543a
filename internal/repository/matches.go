package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/dealmatch/internal/entity"
)

const matchColumns = `id, business_id, buyer_id, seller_id, buyer_user_id, status, ai_compatibility_score,
    seller_action, buyer_action, created_at, updated_at`

func scanMatch(row pgx.Row) (*entity.Match, error) {
	var m entity.Match
	var status, sellerAction, buyerAction string
	if err := row.Scan(&m.ID, &m.BusinessID, &m.BuyerID, &m.SellerID, &m.BuyerUserID, &status, &m.AICompatibilityScore,
		&sellerAction, &buyerAction, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Status = entity.MatchStatus(status)
	m.SellerAction = entity.MatchAction(sellerAction)
	m.BuyerAction = entity.MatchAction(buyerAction)
	return &m, nil
}

// CreateMatch inserts a pairing; a second match for the same pair yields ErrDuplicate.
func (r *PGXStore) CreateMatch(ctx context.Context, m entity.Match) (*entity.Match, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO matches (id, business_id, buyer_id, seller_id, buyer_user_id, status, ai_compatibility_score,
            seller_action, buyer_action, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
        RETURNING `+matchColumns,
		uuid.NewString(), m.BusinessID, m.BuyerID, m.SellerID, m.BuyerUserID, string(m.Status), m.AICompatibilityScore,
		string(m.SellerAction), string(m.BuyerAction), time.Now().UTC())

	created, err := scanMatch(row)
	if err != nil {
		if isUniqueViolation(err, "matches_business_id_buyer_id_key") {
			return nil, fmt.Errorf("match for business %s and buyer %s: %w", m.BusinessID, m.BuyerID, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert match: %w", err)
	}
	return created, nil
}

// GetMatchByID retrieves a match.
func (r *PGXStore) GetMatchByID(ctx context.Context, id string) (*entity.Match, error) {
	m, err := scanMatch(r.pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		return nil, scanErr(err, "match", id)
	}
	return m, nil
}

// GetMatchByPair retrieves the match for a business/buyer pair.
func (r *PGXStore) GetMatchByPair(ctx context.Context, businessID, buyerID string) (*entity.Match, error) {
	m, err := scanMatch(r.pool.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE business_id = $1 AND buyer_id = $2`, businessID, buyerID))
	if err != nil {
		return nil, scanErr(err, "match", businessID+"/"+buyerID)
	}
	return m, nil
}

// ListMatchesForSeller lists matches on the seller's listings, newest first.
func (r *PGXStore) ListMatchesForSeller(ctx context.Context, sellerUserID string) ([]entity.Match, error) {
	return r.listMatches(ctx, `seller_id = $1`, sellerUserID)
}

// ListMatchesForBuyer lists matches of a buyer profile, newest first.
func (r *PGXStore) ListMatchesForBuyer(ctx context.Context, buyerProfileID string) ([]entity.Match, error) {
	return r.listMatches(ctx, `buyer_id = $1`, buyerProfileID)
}

func (r *PGXStore) listMatches(ctx context.Context, where string, arg string) ([]entity.Match, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+matchColumns+` FROM matches WHERE `+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return collect(rows, "match", scanMatch)
}

// matchStatusExpr recomputes status from the action values being written, so
// concurrent updates serialized on the row lock never leave it stale.
const matchStatusExpr = `status = CASE
        WHEN %[1]s = 'accept' AND %[2]s = 'accept' THEN 'accepted'
        WHEN %[1]s = 'reject' OR %[2]s = 'reject' THEN 'rejected'
        ELSE 'pending' END`

// UpdateMatch records actions or score. Action updates are refused once both
// sides accepted.
func (r *PGXStore) UpdateMatch(ctx context.Context, id string, patch MatchPatch) (*entity.Match, error) {
	var b updateBuilder
	seller, buyer := "seller_action", "buyer_action"
	if patch.SellerAction != nil {
		seller = b.set("seller_action", string(*patch.SellerAction)) + "::text"
	}
	if patch.BuyerAction != nil {
		buyer = b.set("buyer_action", string(*patch.BuyerAction)) + "::text"
	}
	guarded := patch.SellerAction != nil || patch.BuyerAction != nil
	if guarded {
		b.expr(fmt.Sprintf(matchStatusExpr, seller, buyer))
		b.where("status <> 'accepted'")
	}
	setIf(&b, "ai_compatibility_score", patch.AICompatibilityScore)

	query, args := b.query("matches", id, matchColumns)
	m, err := scanMatch(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return m, nil
	}
	if guarded && errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetMatchByID(ctx, id); getErr == nil {
			return nil, fmt.Errorf("match %s: %w", id, ErrMatchClosed)
		}
	}
	return nil, scanErr(err, "match", id)
}
