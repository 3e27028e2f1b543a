package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/octobees/dealmatch/internal/entity"
)

var (
	// ErrNotFound is returned when no record matches the lookup or update target.
	ErrNotFound = errors.New("record not found")
	// ErrEmailDuplicate is returned when an account with the same email exists.
	ErrEmailDuplicate = errors.New("email already exists")
	// ErrDuplicate is returned when a uniqueness constraint (match pair, deal per match) is violated.
	ErrDuplicate = errors.New("record already exists")
	// ErrMatchClosed is returned when an action targets a match both sides already accepted.
	ErrMatchClosed = errors.New("match is already accepted")
)

// UserPatch carries optional user attributes; nil fields are left unchanged.
type UserPatch struct {
	FirstName           *string
	LastName            *string
	UserType            *entity.UserType
	OnboardingCompleted *bool
}

// BusinessPatch carries optional business attributes.
type BusinessPatch struct {
	Name            *string
	Industry        *string
	Description     *string
	AnnualRevenue   *string
	YearsInBusiness *int
	Employees       *int
	Location        *string
	SellingReason   *string
	Timeline        *string
	AskingPrice     *float64
	ContactPhone    *string
	IsActive        *bool
}

// BuyerProfilePatch carries optional buyer profile attributes. Nil slices are left unchanged.
type BuyerProfilePatch struct {
	BudgetRange          *string
	PreferredIndustries  []string
	Experience           *string
	InvestmentFocus      *string
	Timeline             *string
	Location             *string
	AcquisitionStructure []string
	HasFinancing         *bool
	IsActive             *bool
}

// MatchPatch carries the mutable parts of a match. Status is not patchable: the
// store derives it from the two actions in the same write.
type MatchPatch struct {
	SellerAction         *entity.MatchAction
	BuyerAction          *entity.MatchAction
	AICompatibilityScore *float64
}

// DealPatch carries deal attributes other than stage and progress.
type DealPatch struct {
	EstimatedValue   *float64
	Notes            *string
	NextMilestone    *string
	MilestoneDueDate *time.Time
	IsActive         *bool
}

// UsersRepository persists accounts.
type UsersRepository interface {
	CreateUser(ctx context.Context, user entity.User) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*entity.User, error)
}

// BusinessesRepository persists seller listings.
type BusinessesRepository interface {
	CreateBusiness(ctx context.Context, business entity.Business) (*entity.Business, error)
	GetBusinessByID(ctx context.Context, id string) (*entity.Business, error)
	GetBusinessByOwnerID(ctx context.Context, ownerID string) (*entity.Business, error)
	UpdateBusiness(ctx context.Context, id string, patch BusinessPatch) (*entity.Business, error)
	ListBusinessesByIndustry(ctx context.Context, industry string) ([]entity.Business, error)
}

// BuyerProfilesRepository persists acquirer profiles.
type BuyerProfilesRepository interface {
	CreateBuyerProfile(ctx context.Context, profile entity.BuyerProfile) (*entity.BuyerProfile, error)
	GetBuyerProfileByID(ctx context.Context, id string) (*entity.BuyerProfile, error)
	GetBuyerProfileByUserID(ctx context.Context, userID string) (*entity.BuyerProfile, error)
	UpdateBuyerProfile(ctx context.Context, id string, patch BuyerProfilePatch) (*entity.BuyerProfile, error)
	ListActiveBuyerProfiles(ctx context.Context) ([]entity.BuyerProfile, error)
}

// MatchesRepository persists business/buyer pairings.
type MatchesRepository interface {
	CreateMatch(ctx context.Context, match entity.Match) (*entity.Match, error)
	GetMatchByID(ctx context.Context, id string) (*entity.Match, error)
	GetMatchByPair(ctx context.Context, businessID, buyerID string) (*entity.Match, error)
	ListMatchesForSeller(ctx context.Context, sellerUserID string) ([]entity.Match, error)
	ListMatchesForBuyer(ctx context.Context, buyerProfileID string) ([]entity.Match, error)
	UpdateMatch(ctx context.Context, id string, patch MatchPatch) (*entity.Match, error)
}

// DealsRepository persists deals.
type DealsRepository interface {
	CreateDeal(ctx context.Context, deal entity.Deal) (*entity.Deal, error)
	GetDealByID(ctx context.Context, id string) (*entity.Deal, error)
	GetDealByMatchID(ctx context.Context, matchID string) (*entity.Deal, error)
	ListDealsForUser(ctx context.Context, userID string) ([]entity.Deal, error)
	UpdateDealStage(ctx context.Context, id string, stage entity.DealStage, progress *int) (*entity.Deal, error)
	UpdateDeal(ctx context.Context, id string, patch DealPatch) (*entity.Deal, error)
}

// DocumentsRepository persists uploaded document metadata.
type DocumentsRepository interface {
	CreateDocument(ctx context.Context, doc entity.Document) (*entity.Document, error)
	GetDocumentByID(ctx context.Context, id string) (*entity.Document, error)
	ListDocumentsByDealID(ctx context.Context, dealID string) ([]entity.Document, error)
	UpdateDocumentAnalysis(ctx context.Context, id string, status entity.AnalysisStatus, results json.RawMessage, riskFlags []string) (*entity.Document, error)
}

// MessagesRepository persists deal messages.
type MessagesRepository interface {
	CreateMessage(ctx context.Context, msg entity.Message) (*entity.Message, error)
	ListMessagesByDealID(ctx context.Context, dealID string) ([]entity.Message, error)
	ListMessagesForUser(ctx context.Context, userID string) ([]entity.Message, error)
	MarkMessagesRead(ctx context.Context, dealID, receiverID string) (int64, error)
}

// InsightsRepository persists the AI output audit trail.
type InsightsRepository interface {
	CreateInsight(ctx context.Context, insight entity.AIInsight) (*entity.AIInsight, error)
	ListInsightsByEntity(ctx context.Context, entityType, entityID string) ([]entity.AIInsight, error)
}

// Store is the full persistence contract shared by the memory and postgres backends.
type Store interface {
	UsersRepository
	BusinessesRepository
	BuyerProfilesRepository
	MatchesRepository
	DealsRepository
	DocumentsRepository
	MessagesRepository
	InsightsRepository
}
