package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/dealmatch/internal/entity"
)

const insightColumns = `id, entity_type, entity_id, insight_type, insights, confidence, created_at`

func scanInsight(row pgx.Row) (*entity.AIInsight, error) {
	var in entity.AIInsight
	var payload []byte
	if err := row.Scan(&in.ID, &in.EntityType, &in.EntityID, &in.InsightType, &payload, &in.Confidence, &in.CreatedAt); err != nil {
		return nil, err
	}
	in.Insights = payload
	return &in, nil
}

// CreateInsight appends an AI output record.
func (r *PGXStore) CreateInsight(ctx context.Context, in entity.AIInsight) (*entity.AIInsight, error) {
	payload := in.Insights
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	row := r.pool.QueryRow(ctx, `
        INSERT INTO ai_insights (id, entity_type, entity_id, insight_type, insights, confidence, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+insightColumns,
		uuid.NewString(), in.EntityType, in.EntityID, in.InsightType, []byte(payload), in.Confidence, time.Now().UTC())

	created, err := scanInsight(row)
	if err != nil {
		return nil, fmt.Errorf("insert insight: %w", err)
	}
	return created, nil
}

// ListInsightsByEntity lists recorded insights for an entity, newest first.
func (r *PGXStore) ListInsightsByEntity(ctx context.Context, entityType, entityID string) ([]entity.AIInsight, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+insightColumns+` FROM ai_insights WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at DESC`,
		entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	return collect(rows, "insight", scanInsight)
}
