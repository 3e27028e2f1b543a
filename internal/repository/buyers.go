package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/dealmatch/internal/entity"
)

const buyerColumns = `id, user_id, budget_range, preferred_industries, experience, investment_focus, timeline,
    location, acquisition_structure, has_financing, is_active, created_at, updated_at`

func scanBuyer(row pgx.Row) (*entity.BuyerProfile, error) {
	var p entity.BuyerProfile
	if err := row.Scan(&p.ID, &p.UserID, &p.BudgetRange, &p.PreferredIndustries, &p.Experience, &p.InvestmentFocus,
		&p.Timeline, &p.Location, &p.AcquisitionStructure, &p.HasFinancing, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.PreferredIndustries == nil {
		p.PreferredIndustries = []string{}
	}
	if p.AcquisitionStructure == nil {
		p.AcquisitionStructure = []string{}
	}
	return &p, nil
}

func textArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// CreateBuyerProfile inserts an acquirer profile.
func (r *PGXStore) CreateBuyerProfile(ctx context.Context, p entity.BuyerProfile) (*entity.BuyerProfile, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO buyer_profiles (id, user_id, budget_range, preferred_industries, experience, investment_focus, timeline,
            location, acquisition_structure, has_financing, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
        RETURNING `+buyerColumns,
		uuid.NewString(), p.UserID, p.BudgetRange, textArray(p.PreferredIndustries), p.Experience, p.InvestmentFocus, p.Timeline,
		p.Location, textArray(p.AcquisitionStructure), p.HasFinancing, p.IsActive, time.Now().UTC())

	created, err := scanBuyer(row)
	if err != nil {
		return nil, fmt.Errorf("insert buyer profile: %w", err)
	}
	return created, nil
}

// GetBuyerProfileByID retrieves a profile.
func (r *PGXStore) GetBuyerProfileByID(ctx context.Context, id string) (*entity.BuyerProfile, error) {
	p, err := scanBuyer(r.pool.QueryRow(ctx, `SELECT `+buyerColumns+` FROM buyer_profiles WHERE id = $1`, id))
	if err != nil {
		return nil, scanErr(err, "buyer profile", id)
	}
	return p, nil
}

// GetBuyerProfileByUserID returns the user's earliest profile.
func (r *PGXStore) GetBuyerProfileByUserID(ctx context.Context, userID string) (*entity.BuyerProfile, error) {
	p, err := scanBuyer(r.pool.QueryRow(ctx,
		`SELECT `+buyerColumns+` FROM buyer_profiles WHERE user_id = $1 ORDER BY created_at ASC LIMIT 1`, userID))
	if err != nil {
		return nil, scanErr(err, "buyer profile for user", userID)
	}
	return p, nil
}

// UpdateBuyerProfile patches profile attributes.
func (r *PGXStore) UpdateBuyerProfile(ctx context.Context, id string, patch BuyerProfilePatch) (*entity.BuyerProfile, error) {
	var b updateBuilder
	setIf(&b, "budget_range", patch.BudgetRange)
	if patch.PreferredIndustries != nil {
		b.set("preferred_industries", patch.PreferredIndustries)
	}
	setIf(&b, "experience", patch.Experience)
	setIf(&b, "investment_focus", patch.InvestmentFocus)
	setIf(&b, "timeline", patch.Timeline)
	setIf(&b, "location", patch.Location)
	if patch.AcquisitionStructure != nil {
		b.set("acquisition_structure", patch.AcquisitionStructure)
	}
	setIf(&b, "has_financing", patch.HasFinancing)
	setIf(&b, "is_active", patch.IsActive)

	query, args := b.query("buyer_profiles", id, buyerColumns)
	p, err := scanBuyer(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, scanErr(err, "buyer profile", id)
	}
	return p, nil
}

// ListActiveBuyerProfiles returns every active profile, newest first.
func (r *PGXStore) ListActiveBuyerProfiles(ctx context.Context) ([]entity.BuyerProfile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+buyerColumns+` FROM buyer_profiles WHERE is_active ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list buyer profiles: %w", err)
	}
	return collect(rows, "buyer profile", scanBuyer)
}
