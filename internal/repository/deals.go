package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/dealmatch/internal/entity"
)

const dealColumns = `id, match_id, seller_id, buyer_user_id, current_stage, stage_progress, estimated_value, notes,
    next_milestone, milestone_due_date, is_active, created_at, updated_at`

func scanDeal(row pgx.Row) (*entity.Deal, error) {
	var d entity.Deal
	var stage string
	if err := row.Scan(&d.ID, &d.MatchID, &d.SellerID, &d.BuyerUserID, &stage, &d.StageProgress, &d.EstimatedValue,
		&d.Notes, &d.NextMilestone, &d.MilestoneDueDate, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.CurrentStage = entity.DealStage(stage)
	return &d, nil
}

// CreateDeal inserts a deal; at most one deal exists per match.
func (r *PGXStore) CreateDeal(ctx context.Context, d entity.Deal) (*entity.Deal, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO deals (id, match_id, seller_id, buyer_user_id, current_stage, stage_progress, estimated_value, notes,
            next_milestone, milestone_due_date, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
        RETURNING `+dealColumns,
		uuid.NewString(), d.MatchID, d.SellerID, d.BuyerUserID, string(d.CurrentStage), d.StageProgress, d.EstimatedValue, d.Notes,
		d.NextMilestone, d.MilestoneDueDate, d.IsActive, time.Now().UTC())

	created, err := scanDeal(row)
	if err != nil {
		if isUniqueViolation(err, "deals_match_id_key") {
			return nil, fmt.Errorf("deal for match %s: %w", d.MatchID, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert deal: %w", err)
	}
	return created, nil
}

// GetDealByID retrieves a deal.
func (r *PGXStore) GetDealByID(ctx context.Context, id string) (*entity.Deal, error) {
	d, err := scanDeal(r.pool.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id))
	if err != nil {
		return nil, scanErr(err, "deal", id)
	}
	return d, nil
}

// GetDealByMatchID retrieves the deal promoted from a match.
func (r *PGXStore) GetDealByMatchID(ctx context.Context, matchID string) (*entity.Deal, error) {
	d, err := scanDeal(r.pool.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE match_id = $1`, matchID))
	if err != nil {
		return nil, scanErr(err, "deal for match", matchID)
	}
	return d, nil
}

// ListDealsForUser lists deals where the user is seller or buyer, most recently updated first.
func (r *PGXStore) ListDealsForUser(ctx context.Context, userID string) ([]entity.Deal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE seller_id = $1 OR buyer_user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	return collect(rows, "deal", scanDeal)
}

// UpdateDealStage overwrites the stage, and the progress when given.
func (r *PGXStore) UpdateDealStage(ctx context.Context, id string, stage entity.DealStage, progress *int) (*entity.Deal, error) {
	var b updateBuilder
	b.set("current_stage", string(stage))
	setIf(&b, "stage_progress", progress)

	query, args := b.query("deals", id, dealColumns)
	d, err := scanDeal(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, scanErr(err, "deal", id)
	}
	return d, nil
}

// UpdateDeal patches notes, milestone and valuation.
func (r *PGXStore) UpdateDeal(ctx context.Context, id string, patch DealPatch) (*entity.Deal, error) {
	var b updateBuilder
	setIf(&b, "estimated_value", patch.EstimatedValue)
	setIf(&b, "notes", patch.Notes)
	setIf(&b, "next_milestone", patch.NextMilestone)
	setIf(&b, "milestone_due_date", patch.MilestoneDueDate)
	setIf(&b, "is_active", patch.IsActive)

	query, args := b.query("deals", id, dealColumns)
	d, err := scanDeal(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, scanErr(err, "deal", id)
	}
	return d, nil
}
