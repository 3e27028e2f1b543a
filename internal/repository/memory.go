package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/dealmatch/internal/entity"
)

// MemoryStore implements Store with process-local maps guarded by a single RWMutex.
// Records are copied in and out so callers never share memory with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	clock func() time.Time
	last  time.Time

	users      map[string]entity.User
	businesses map[string]entity.Business
	buyers     map[string]entity.BuyerProfile
	matches    map[string]entity.Match
	deals      map[string]entity.Deal
	documents  map[string]entity.Document
	messages   map[string]entity.Message
	insights   map[string]entity.AIInsight
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clock:      time.Now,
		users:      make(map[string]entity.User),
		businesses: make(map[string]entity.Business),
		buyers:     make(map[string]entity.BuyerProfile),
		matches:    make(map[string]entity.Match),
		deals:      make(map[string]entity.Deal),
		documents:  make(map[string]entity.Document),
		messages:   make(map[string]entity.Message),
		insights:   make(map[string]entity.AIInsight),
	}
}

// tick returns a timestamp strictly after every previously issued one. Callers hold mu.
func (s *MemoryStore) tick() time.Time {
	now := s.clock().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, user entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return nil, fmt.Errorf("%w: %s", ErrEmailDuplicate, user.Email)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = s.tick()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return &user, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, notFound("user", email)
}

func (s *MemoryStore) UpdateUser(_ context.Context, id string, patch UserPatch) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	assign(&user.FirstName, patch.FirstName)
	assign(&user.LastName, patch.LastName)
	assign(&user.UserType, patch.UserType)
	assign(&user.OnboardingCompleted, patch.OnboardingCompleted)
	user.UpdatedAt = s.tick()
	s.users[id] = user
	return &user, nil
}

// Businesses

func (s *MemoryStore) CreateBusiness(_ context.Context, business entity.Business) (*entity.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	business.ID = uuid.NewString()
	business.CreatedAt = s.tick()
	business.UpdatedAt = business.CreatedAt
	s.businesses[business.ID] = business
	return &business, nil
}

func (s *MemoryStore) GetBusinessByID(_ context.Context, id string) (*entity.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	business, ok := s.businesses[id]
	if !ok {
		return nil, notFound("business", id)
	}
	return &business, nil
}

// GetBusinessByOwnerID returns the owner's earliest listing.
func (s *MemoryStore) GetBusinessByOwnerID(_ context.Context, ownerID string) (*entity.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *entity.Business
	for _, business := range s.businesses {
		if business.OwnerID != ownerID {
			continue
		}
		if found == nil || business.CreatedAt.Before(found.CreatedAt) {
			b := business
			found = &b
		}
	}
	if found == nil {
		return nil, notFound("business for owner", ownerID)
	}
	return found, nil
}

func (s *MemoryStore) UpdateBusiness(_ context.Context, id string, patch BusinessPatch) (*entity.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.businesses[id]
	if !ok {
		return nil, notFound("business", id)
	}
	assign(&b.Name, patch.Name)
	assign(&b.Industry, patch.Industry)
	assign(&b.Description, patch.Description)
	assign(&b.AnnualRevenue, patch.AnnualRevenue)
	assignPtr(&b.YearsInBusiness, patch.YearsInBusiness)
	assignPtr(&b.Employees, patch.Employees)
	assign(&b.Location, patch.Location)
	assign(&b.SellingReason, patch.SellingReason)
	assign(&b.Timeline, patch.Timeline)
	assignPtr(&b.AskingPrice, patch.AskingPrice)
	assign(&b.ContactPhone, patch.ContactPhone)
	assign(&b.IsActive, patch.IsActive)
	b.UpdatedAt = s.tick()
	s.businesses[id] = b
	return &b, nil
}

func (s *MemoryStore) ListBusinessesByIndustry(_ context.Context, industry string) ([]entity.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Business, 0)
	for _, b := range s.businesses {
		if b.IsActive && b.Industry == industry {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Buyer profiles

func (s *MemoryStore) CreateBuyerProfile(_ context.Context, profile entity.BuyerProfile) (*entity.BuyerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile.ID = uuid.NewString()
	profile.PreferredIndustries = slices.Clone(profile.PreferredIndustries)
	profile.AcquisitionStructure = slices.Clone(profile.AcquisitionStructure)
	profile.CreatedAt = s.tick()
	profile.UpdatedAt = profile.CreatedAt
	s.buyers[profile.ID] = profile
	return cloneBuyer(profile), nil
}

func (s *MemoryStore) GetBuyerProfileByID(_ context.Context, id string) (*entity.BuyerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.buyers[id]
	if !ok {
		return nil, notFound("buyer profile", id)
	}
	return cloneBuyer(profile), nil
}

func (s *MemoryStore) GetBuyerProfileByUserID(_ context.Context, userID string) (*entity.BuyerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *entity.BuyerProfile
	for _, profile := range s.buyers {
		if profile.UserID != userID {
			continue
		}
		if found == nil || profile.CreatedAt.Before(found.CreatedAt) {
			found = cloneBuyer(profile)
		}
	}
	if found == nil {
		return nil, notFound("buyer profile for user", userID)
	}
	return found, nil
}

func (s *MemoryStore) UpdateBuyerProfile(_ context.Context, id string, patch BuyerProfilePatch) (*entity.BuyerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.buyers[id]
	if !ok {
		return nil, notFound("buyer profile", id)
	}
	assign(&p.BudgetRange, patch.BudgetRange)
	if patch.PreferredIndustries != nil {
		p.PreferredIndustries = slices.Clone(patch.PreferredIndustries)
	}
	assign(&p.Experience, patch.Experience)
	assign(&p.InvestmentFocus, patch.InvestmentFocus)
	assign(&p.Timeline, patch.Timeline)
	assign(&p.Location, patch.Location)
	if patch.AcquisitionStructure != nil {
		p.AcquisitionStructure = slices.Clone(patch.AcquisitionStructure)
	}
	assign(&p.HasFinancing, patch.HasFinancing)
	assign(&p.IsActive, patch.IsActive)
	p.UpdatedAt = s.tick()
	s.buyers[id] = p
	return cloneBuyer(p), nil
}

func (s *MemoryStore) ListActiveBuyerProfiles(_ context.Context) ([]entity.BuyerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.BuyerProfile, 0)
	for _, p := range s.buyers {
		if p.IsActive {
			out = append(out, *cloneBuyer(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func cloneBuyer(p entity.BuyerProfile) *entity.BuyerProfile {
	p.PreferredIndustries = slices.Clone(p.PreferredIndustries)
	p.AcquisitionStructure = slices.Clone(p.AcquisitionStructure)
	return &p
}

// Matches

func (s *MemoryStore) CreateMatch(_ context.Context, match entity.Match) (*entity.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.matches {
		if existing.BusinessID == match.BusinessID && existing.BuyerID == match.BuyerID {
			return nil, fmt.Errorf("match for business %s and buyer %s: %w", match.BusinessID, match.BuyerID, ErrDuplicate)
		}
	}
	match.ID = uuid.NewString()
	match.CreatedAt = s.tick()
	match.UpdatedAt = match.CreatedAt
	s.matches[match.ID] = match
	return &match, nil
}

func (s *MemoryStore) GetMatchByID(_ context.Context, id string) (*entity.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match, ok := s.matches[id]
	if !ok {
		return nil, notFound("match", id)
	}
	return &match, nil
}

func (s *MemoryStore) GetMatchByPair(_ context.Context, businessID, buyerID string) (*entity.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, match := range s.matches {
		if match.BusinessID == businessID && match.BuyerID == buyerID {
			return &match, nil
		}
	}
	return nil, notFound("match", businessID+"/"+buyerID)
}

func (s *MemoryStore) ListMatchesForSeller(_ context.Context, sellerUserID string) ([]entity.Match, error) {
	return s.filterMatches(func(m entity.Match) bool { return m.SellerID == sellerUserID }), nil
}

func (s *MemoryStore) ListMatchesForBuyer(_ context.Context, buyerProfileID string) ([]entity.Match, error) {
	return s.filterMatches(func(m entity.Match) bool { return m.BuyerID == buyerProfileID }), nil
}

func (s *MemoryStore) filterMatches(keep func(entity.Match) bool) []entity.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Match, 0)
	for _, m := range s.matches {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *MemoryStore) UpdateMatch(_ context.Context, id string, patch MatchPatch) (*entity.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, notFound("match", id)
	}
	if (patch.SellerAction != nil || patch.BuyerAction != nil) && m.Status == entity.MatchAccepted {
		return nil, fmt.Errorf("match %s: %w", id, ErrMatchClosed)
	}
	assign(&m.SellerAction, patch.SellerAction)
	assign(&m.BuyerAction, patch.BuyerAction)
	m.Status = entity.ResolveMatchStatus(m.SellerAction, m.BuyerAction)
	assignPtr(&m.AICompatibilityScore, patch.AICompatibilityScore)
	m.UpdatedAt = s.tick()
	s.matches[id] = m
	return &m, nil
}

// Deals

func (s *MemoryStore) CreateDeal(_ context.Context, deal entity.Deal) (*entity.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.deals {
		if existing.MatchID == deal.MatchID {
			return nil, fmt.Errorf("deal for match %s: %w", deal.MatchID, ErrDuplicate)
		}
	}
	deal.ID = uuid.NewString()
	deal.CreatedAt = s.tick()
	deal.UpdatedAt = deal.CreatedAt
	s.deals[deal.ID] = deal
	return &deal, nil
}

func (s *MemoryStore) GetDealByID(_ context.Context, id string) (*entity.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deal, ok := s.deals[id]
	if !ok {
		return nil, notFound("deal", id)
	}
	return &deal, nil
}

func (s *MemoryStore) GetDealByMatchID(_ context.Context, matchID string) (*entity.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, deal := range s.deals {
		if deal.MatchID == matchID {
			return &deal, nil
		}
	}
	return nil, notFound("deal for match", matchID)
}

func (s *MemoryStore) ListDealsForUser(_ context.Context, userID string) ([]entity.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Deal, 0)
	for _, d := range s.deals {
		if d.HasParticipant(userID) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateDealStage(_ context.Context, id string, stage entity.DealStage, progress *int) (*entity.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deals[id]
	if !ok {
		return nil, notFound("deal", id)
	}
	d.CurrentStage = stage
	assign(&d.StageProgress, progress)
	d.UpdatedAt = s.tick()
	s.deals[id] = d
	return &d, nil
}

func (s *MemoryStore) UpdateDeal(_ context.Context, id string, patch DealPatch) (*entity.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deals[id]
	if !ok {
		return nil, notFound("deal", id)
	}
	assignPtr(&d.EstimatedValue, patch.EstimatedValue)
	assign(&d.Notes, patch.Notes)
	assign(&d.NextMilestone, patch.NextMilestone)
	assignPtr(&d.MilestoneDueDate, patch.MilestoneDueDate)
	assign(&d.IsActive, patch.IsActive)
	d.UpdatedAt = s.tick()
	s.deals[id] = d
	return &d, nil
}

// Documents

func (s *MemoryStore) CreateDocument(_ context.Context, doc entity.Document) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.ID = uuid.NewString()
	if doc.RiskFlags == nil {
		doc.RiskFlags = []string{}
	}
	doc.CreatedAt = s.tick()
	doc.UpdatedAt = doc.CreatedAt
	s.documents[doc.ID] = cloneDocument(doc)
	return ptr(cloneDocument(doc)), nil
}

func (s *MemoryStore) GetDocumentByID(_ context.Context, id string) (*entity.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, notFound("document", id)
	}
	return ptr(cloneDocument(doc)), nil
}

func (s *MemoryStore) ListDocumentsByDealID(_ context.Context, dealID string) ([]entity.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Document, 0)
	for _, doc := range s.documents {
		if doc.DealID != nil && *doc.DealID == dealID {
			out = append(out, cloneDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateDocumentAnalysis(_ context.Context, id string, status entity.AnalysisStatus, results json.RawMessage, riskFlags []string) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, notFound("document", id)
	}
	doc.AIAnalysisStatus = status
	if results != nil {
		doc.AIAnalysisResults = slices.Clone(results)
	}
	if riskFlags != nil {
		doc.RiskFlags = slices.Clone(riskFlags)
	}
	doc.UpdatedAt = s.tick()
	s.documents[id] = doc
	return ptr(cloneDocument(doc)), nil
}

func cloneDocument(doc entity.Document) entity.Document {
	doc.AIAnalysisResults = slices.Clone(doc.AIAnalysisResults)
	doc.RiskFlags = slices.Clone(doc.RiskFlags)
	return doc
}

// Messages

func (s *MemoryStore) CreateMessage(_ context.Context, msg entity.Message) (*entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = uuid.NewString()
	msg.CreatedAt = s.tick()
	s.messages[msg.ID] = msg
	return &msg, nil
}

func (s *MemoryStore) ListMessagesByDealID(_ context.Context, dealID string) ([]entity.Message, error) {
	return s.filterMessages(func(m entity.Message) bool { return m.DealID == dealID }), nil
}

func (s *MemoryStore) ListMessagesForUser(_ context.Context, userID string) ([]entity.Message, error) {
	return s.filterMessages(func(m entity.Message) bool { return m.SenderID == userID || m.ReceiverID == userID }), nil
}

func (s *MemoryStore) filterMessages(keep func(entity.Message) bool) []entity.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Message, 0)
	for _, m := range s.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *MemoryStore) MarkMessagesRead(_ context.Context, dealID, receiverID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, m := range s.messages {
		if m.DealID == dealID && m.ReceiverID == receiverID && !m.IsRead {
			m.IsRead = true
			s.messages[id] = m
			n++
		}
	}
	return n, nil
}

// Insights

func (s *MemoryStore) CreateInsight(_ context.Context, insight entity.AIInsight) (*entity.AIInsight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	insight.ID = uuid.NewString()
	insight.Insights = slices.Clone(insight.Insights)
	insight.CreatedAt = s.tick()
	s.insights[insight.ID] = insight
	return &insight, nil
}

func (s *MemoryStore) ListInsightsByEntity(_ context.Context, entityType, entityID string) ([]entity.AIInsight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.AIInsight, 0)
	for _, in := range s.insights {
		if in.EntityType == entityType && in.EntityID == entityID {
			in.Insights = slices.Clone(in.Insights)
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func assignPtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func ptr[T any](v T) *T { return &v }
