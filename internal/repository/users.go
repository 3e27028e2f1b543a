package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/dealmatch/internal/entity"
)

const userColumns = `id, email, password_hash, first_name, last_name, user_type, onboarding_completed, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	var userType string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&userType, &user.OnboardingCompleted, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.UserType = entity.UserType(userType)
	return &user, nil
}

// CreateUser inserts a new account.
func (r *PGXStore) CreateUser(ctx context.Context, user entity.User) (*entity.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
        INSERT INTO users (id, email, password_hash, first_name, last_name, user_type, onboarding_completed, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
        RETURNING `+userColumns,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, string(user.UserType), user.OnboardingCompleted, now)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return nil, fmt.Errorf("%w: %s", ErrEmailDuplicate, user.Email)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// GetUserByID retrieves a user by identifier.
func (r *PGXStore) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, scanErr(err, "user", id)
	}
	return user, nil
}

// GetUserByEmail fetches a user by email if present.
func (r *PGXStore) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if err != nil {
		return nil, scanErr(err, "user", email)
	}
	return user, nil
}

// UpdateUser patches user attributes.
func (r *PGXStore) UpdateUser(ctx context.Context, id string, patch UserPatch) (*entity.User, error) {
	var b updateBuilder
	setIf(&b, "first_name", patch.FirstName)
	setIf(&b, "last_name", patch.LastName)
	if patch.UserType != nil {
		b.set("user_type", string(*patch.UserType))
	}
	setIf(&b, "onboarding_completed", patch.OnboardingCompleted)

	query, args := b.query("users", id, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, scanErr(err, "user", id)
	}
	return user, nil
}
