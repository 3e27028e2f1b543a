package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/dealmatch/internal/auth"
	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/repository"
)

const minPasswordLength = 8

// AuthService coordinates registration, credential validation and token issuance.
type AuthService struct {
	users    repository.UsersRepository
	jwt      *auth.JWTManager
	contacts *ContactNormalizer
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UsersRepository, jwtManager *auth.JWTManager, contacts *ContactNormalizer) *AuthService {
	if contacts == nil {
		contacts = NewContactNormalizer("")
	}
	return &AuthService{users: users, jwt: jwtManager, contacts: contacts}
}

// Register creates an account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email, err := s.contacts.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalidField("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailDuplicate) {
			return nil, invalidField("email", "already registered")
		}
		return nil, err
	}

	return s.respond(*user)
}

// Login validates credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password must not be empty")
	}

	normalized, err := s.contacts.NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.respond(*user)
}

// CurrentUser returns the account behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// IssueToken signs a token carrying the user's current type.
func (s *AuthService) IssueToken(user entity.User) (string, error) {
	return s.jwt.GenerateToken(user.ID, user.Email, string(user.UserType))
}

func (s *AuthService) respond(user entity.User) (*dto.AuthResponse, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{AccessToken: token, User: &user}, nil
}
