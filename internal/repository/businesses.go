package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/dealmatch/internal/entity"
)

const businessColumns = `id, owner_id, name, industry, description, annual_revenue, years_in_business, employees,
    location, selling_reason, timeline, asking_price, contact_phone, is_active, created_at, updated_at`

func scanBusiness(row pgx.Row) (*entity.Business, error) {
	var b entity.Business
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Industry, &b.Description, &b.AnnualRevenue,
		&b.YearsInBusiness, &b.Employees, &b.Location, &b.SellingReason, &b.Timeline, &b.AskingPrice,
		&b.ContactPhone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBusiness inserts a listing.
func (r *PGXStore) CreateBusiness(ctx context.Context, b entity.Business) (*entity.Business, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO businesses (id, owner_id, name, industry, description, annual_revenue, years_in_business, employees,
            location, selling_reason, timeline, asking_price, contact_phone, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
        RETURNING `+businessColumns,
		uuid.NewString(), b.OwnerID, b.Name, b.Industry, b.Description, b.AnnualRevenue, b.YearsInBusiness, b.Employees,
		b.Location, b.SellingReason, b.Timeline, b.AskingPrice, b.ContactPhone, b.IsActive, time.Now().UTC())

	created, err := scanBusiness(row)
	if err != nil {
		return nil, fmt.Errorf("insert business: %w", err)
	}
	return created, nil
}

// GetBusinessByID retrieves a listing.
func (r *PGXStore) GetBusinessByID(ctx context.Context, id string) (*entity.Business, error) {
	b, err := scanBusiness(r.pool.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id))
	if err != nil {
		return nil, scanErr(err, "business", id)
	}
	return b, nil
}

// GetBusinessByOwnerID returns the owner's earliest listing.
func (r *PGXStore) GetBusinessByOwnerID(ctx context.Context, ownerID string) (*entity.Business, error) {
	b, err := scanBusiness(r.pool.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE owner_id = $1 ORDER BY created_at ASC LIMIT 1`, ownerID))
	if err != nil {
		return nil, scanErr(err, "business for owner", ownerID)
	}
	return b, nil
}

// UpdateBusiness patches listing attributes.
func (r *PGXStore) UpdateBusiness(ctx context.Context, id string, patch BusinessPatch) (*entity.Business, error) {
	var b updateBuilder
	setIf(&b, "name", patch.Name)
	setIf(&b, "industry", patch.Industry)
	setIf(&b, "description", patch.Description)
	setIf(&b, "annual_revenue", patch.AnnualRevenue)
	setIf(&b, "years_in_business", patch.YearsInBusiness)
	setIf(&b, "employees", patch.Employees)
	setIf(&b, "location", patch.Location)
	setIf(&b, "selling_reason", patch.SellingReason)
	setIf(&b, "timeline", patch.Timeline)
	setIf(&b, "asking_price", patch.AskingPrice)
	setIf(&b, "contact_phone", patch.ContactPhone)
	setIf(&b, "is_active", patch.IsActive)

	query, args := b.query("businesses", id, businessColumns)
	updated, err := scanBusiness(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, scanErr(err, "business", id)
	}
	return updated, nil
}

// ListBusinessesByIndustry returns active listings in an industry, newest first.
func (r *PGXStore) ListBusinessesByIndustry(ctx context.Context, industry string) ([]entity.Business, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE industry = $1 AND is_active ORDER BY created_at DESC`, industry)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	return collect(rows, "business", scanBusiness)
}
