package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/octobees/dealmatch/internal/dto"
	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/repository"
)

// OnboardingResult is returned once a user has picked a side of the marketplace.
type OnboardingResult struct {
	AccessToken  string               `json:"access_token"`
	User         *entity.User         `json:"user"`
	Business     *entity.Business     `json:"business,omitempty"`
	BuyerProfile *entity.BuyerProfile `json:"buyerProfile,omitempty"`
}

// ProfileService manages onboarding and the seller/buyer profiles.
type ProfileService struct {
	store    repository.Store
	contacts *ContactNormalizer
	tokens   TokenIssuer
}

// NewProfileService constructs a ProfileService.
func NewProfileService(store repository.Store, contacts *ContactNormalizer, tokens TokenIssuer) *ProfileService {
	if contacts == nil {
		contacts = NewContactNormalizer("")
	}
	return &ProfileService{store: store, contacts: contacts, tokens: tokens}
}

// CompleteOnboarding records the user type and creates or refreshes the matching profile.
// A user owns at most one business and one buyer profile; repeating onboarding updates them.
func (s *ProfileService) CompleteOnboarding(ctx context.Context, userID string, req dto.OnboardingRequest) (*OnboardingResult, error) {
	userType := entity.UserType(req.UserType)
	if !userType.Valid() {
		return nil, ErrInvalidUserType
	}

	var businessPatch repository.BusinessPatch
	var buyerPatch repository.BuyerProfilePatch
	switch {
	case userType == entity.UserTypeSeller && req.BusinessData != nil:
		patch, err := s.businessPatch(*req.BusinessData)
		if err != nil {
			return nil, err
		}
		if _, err := s.store.GetBusinessByOwnerID(ctx, userID); errors.Is(err, repository.ErrNotFound) {
			if err := requireBusinessFields(patch); err != nil {
				return nil, err
			}
		}
		businessPatch = patch
	case userType == entity.UserTypeBuyer && req.BuyerData != nil:
		patch, err := buyerProfilePatch(*req.BuyerData)
		if err != nil {
			return nil, err
		}
		buyerPatch = patch
	}

	completed := true
	user, err := s.store.UpdateUser(ctx, userID, repository.UserPatch{
		FirstName:           trimmed(req.FirstName),
		LastName:            trimmed(req.LastName),
		UserType:            &userType,
		OnboardingCompleted: &completed,
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	result := &OnboardingResult{User: user}
	switch {
	case userType == entity.UserTypeSeller && req.BusinessData != nil:
		business, err := s.upsertBusiness(ctx, userID, businessPatch)
		if err != nil {
			return nil, err
		}
		result.Business = business
	case userType == entity.UserTypeBuyer && req.BuyerData != nil:
		profile, err := s.upsertBuyerProfile(ctx, userID, buyerPatch)
		if err != nil {
			return nil, err
		}
		result.BuyerProfile = profile
	}

	token, err := s.tokens.IssueToken(*user)
	if err != nil {
		return nil, err
	}
	result.AccessToken = token
	return result, nil
}

// GetBusinessProfile returns the caller's business.
func (s *ProfileService) GetBusinessProfile(ctx context.Context, userID string) (*entity.Business, error) {
	business, err := s.store.GetBusinessByOwnerID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBusinessProfileRequired
	}
	return business, err
}

// UpdateBusinessProfile applies a partial update to the caller's business.
func (s *ProfileService) UpdateBusinessProfile(ctx context.Context, userID string, in dto.BusinessInput) (*entity.Business, error) {
	patch, err := s.businessPatch(in)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, invalidField("name", "must not be empty")
	}
	if patch.Industry != nil && *patch.Industry == "" {
		return nil, invalidField("industry", "must not be empty")
	}
	current, err := s.GetBusinessProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateBusiness(ctx, current.ID, patch)
}

// GetBuyerProfile returns the caller's buyer profile.
func (s *ProfileService) GetBuyerProfile(ctx context.Context, userID string) (*entity.BuyerProfile, error) {
	profile, err := s.store.GetBuyerProfileByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBuyerProfileRequired
	}
	return profile, err
}

// UpdateBuyerProfile applies a partial update to the caller's buyer profile.
func (s *ProfileService) UpdateBuyerProfile(ctx context.Context, userID string, in dto.BuyerInput) (*entity.BuyerProfile, error) {
	patch, err := buyerProfilePatch(in)
	if err != nil {
		return nil, err
	}
	current, err := s.GetBuyerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateBuyerProfile(ctx, current.ID, patch)
}

func (s *ProfileService) upsertBusiness(ctx context.Context, ownerID string, patch repository.BusinessPatch) (*entity.Business, error) {
	existing, err := s.store.GetBusinessByOwnerID(ctx, ownerID)
	switch {
	case err == nil:
		return s.store.UpdateBusiness(ctx, existing.ID, patch)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	if err := requireBusinessFields(patch); err != nil {
		return nil, err
	}
	business := entity.Business{
		OwnerID:         ownerID,
		Name:            *patch.Name,
		Industry:        *patch.Industry,
		Description:     deref(patch.Description),
		AnnualRevenue:   deref(patch.AnnualRevenue),
		YearsInBusiness: patch.YearsInBusiness,
		Employees:       patch.Employees,
		Location:        deref(patch.Location),
		SellingReason:   deref(patch.SellingReason),
		Timeline:        deref(patch.Timeline),
		AskingPrice:     patch.AskingPrice,
		ContactPhone:    deref(patch.ContactPhone),
		IsActive:        patch.IsActive == nil || *patch.IsActive,
	}
	return s.store.CreateBusiness(ctx, business)
}

func (s *ProfileService) upsertBuyerProfile(ctx context.Context, userID string, patch repository.BuyerProfilePatch) (*entity.BuyerProfile, error) {
	existing, err := s.store.GetBuyerProfileByUserID(ctx, userID)
	switch {
	case err == nil:
		return s.store.UpdateBuyerProfile(ctx, existing.ID, patch)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	profile := entity.BuyerProfile{
		UserID:               userID,
		BudgetRange:          deref(patch.BudgetRange),
		PreferredIndustries:  orEmptyStrings(patch.PreferredIndustries),
		Experience:           deref(patch.Experience),
		InvestmentFocus:      deref(patch.InvestmentFocus),
		Timeline:             deref(patch.Timeline),
		Location:             deref(patch.Location),
		AcquisitionStructure: orEmptyStrings(patch.AcquisitionStructure),
		HasFinancing:         patch.HasFinancing != nil && *patch.HasFinancing,
		IsActive:             patch.IsActive == nil || *patch.IsActive,
	}
	return s.store.CreateBuyerProfile(ctx, profile)
}

func requireBusinessFields(patch repository.BusinessPatch) error {
	if patch.Name == nil || *patch.Name == "" {
		return invalidField("businessData.name", "is required")
	}
	if patch.Industry == nil || *patch.Industry == "" {
		return invalidField("businessData.industry", "is required")
	}
	return nil
}

func (s *ProfileService) businessPatch(in dto.BusinessInput) (repository.BusinessPatch, error) {
	patch := repository.BusinessPatch{
		Name:            trimmed(in.Name),
		Industry:        lowerTrimmed(in.Industry),
		Description:     in.Description,
		AnnualRevenue:   in.AnnualRevenue,
		YearsInBusiness: in.YearsInBusiness,
		Employees:       in.Employees,
		Location:        trimmed(in.Location),
		SellingReason:   in.SellingReason,
		Timeline:        in.Timeline,
		AskingPrice:     in.AskingPrice,
		IsActive:        in.IsActive,
	}
	if in.YearsInBusiness != nil && *in.YearsInBusiness < 0 {
		return patch, invalidField("yearsInBusiness", "must not be negative")
	}
	if in.Employees != nil && *in.Employees < 0 {
		return patch, invalidField("employees", "must not be negative")
	}
	if in.AskingPrice != nil && *in.AskingPrice < 0 {
		return patch, invalidField("askingPrice", "must not be negative")
	}
	if in.ContactPhone != nil {
		phone, err := s.contacts.NormalizePhone(*in.ContactPhone)
		if err != nil {
			return patch, err
		}
		patch.ContactPhone = &phone
	}
	return patch, nil
}

func buyerProfilePatch(in dto.BuyerInput) (repository.BuyerProfilePatch, error) {
	patch := repository.BuyerProfilePatch{
		BudgetRange:          in.BudgetRange,
		Experience:           in.Experience,
		InvestmentFocus:      in.InvestmentFocus,
		Timeline:             in.Timeline,
		Location:             trimmed(in.Location),
		AcquisitionStructure: in.AcquisitionStructure,
		HasFinancing:         in.HasFinancing,
		IsActive:             in.IsActive,
	}
	if in.PreferredIndustries != nil {
		industries := make([]string, 0, len(in.PreferredIndustries))
		seen := make(map[string]struct{}, len(in.PreferredIndustries))
		for _, raw := range in.PreferredIndustries {
			industry := strings.ToLower(strings.TrimSpace(raw))
			if industry == "" {
				return patch, invalidField("preferredIndustries", "must not contain blank entries")
			}
			if _, dup := seen[industry]; dup {
				continue
			}
			seen[industry] = struct{}{}
			industries = append(industries, industry)
		}
		patch.PreferredIndustries = industries
	}
	return patch, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}

func lowerTrimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(*v))
	return &s
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func orEmptyStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
