package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/filestore"
	"github.com/octobees/dealmatch/internal/realtime"
	"github.com/octobees/dealmatch/internal/repository"
)

// analysisPrefixBytes bounds how much of a document is sent for analysis.
const analysisPrefixBytes = 20000

var failedAnalysis = json.RawMessage(`{"error":"Analysis failed"}`)

// FileStore persists uploaded bytes. *filestore.LocalStore satisfies it.
type FileStore interface {
	Save(originalName string, r io.Reader) (filestore.StoredFile, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// UploadInput is a document upload with its multipart metadata.
type UploadInput struct {
	FileName     string
	ContentType  string
	Content      io.Reader
	DealID       string
	BusinessID   string
	DocumentType string
}

// DocumentService stores uploads and runs their analysis inline.
type DocumentService struct {
	store   repository.Store
	files   FileStore
	advisor Advisor
	events  Publisher
	log     *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(store repository.Store, files FileStore, advisor Advisor, events Publisher, log *zap.Logger) *DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &DocumentService{store: store, files: files, advisor: advisor, events: events, log: log}
}

// Upload saves the file, records it as processing, analyses it and stores the outcome.
// A failed analysis leaves the document in the failed state rather than returning an error.
func (s *DocumentService) Upload(ctx context.Context, userID string, in UploadInput) (*entity.Document, error) {
	docType := entity.DocumentType(in.DocumentType)
	if docType == "" {
		docType = entity.DocOther
	}
	if !docType.Valid() {
		return nil, invalidField("documentType", "unknown document type")
	}

	var dealID, businessID *string
	var deal *entity.Deal
	if in.DealID != "" {
		d, err := s.store.GetDealByID(ctx, in.DealID)
		if err != nil {
			return nil, err
		}
		if !d.HasParticipant(userID) {
			return nil, ErrNotParticipant
		}
		deal = d
		dealID = &d.ID
	}
	var business *entity.Business
	if in.BusinessID != "" {
		b, err := s.store.GetBusinessByID(ctx, in.BusinessID)
		if err != nil {
			return nil, err
		}
		if b.OwnerID != userID && !s.dealCovers(ctx, deal, b.ID) {
			return nil, ErrNotParticipant
		}
		business = b
		businessID = &b.ID
	}

	stored, err := s.files.Save(in.FileName, in.Content)
	if err != nil {
		if errors.Is(err, filestore.ErrTooLarge) {
			return nil, ErrDocumentTooLarge
		}
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc, err := s.store.CreateDocument(ctx, entity.Document{
		DealID:           dealID,
		BusinessID:       businessID,
		UploaderID:       userID,
		FileName:         in.FileName,
		FileType:         in.ContentType,
		FileSize:         stored.Size,
		FilePath:         stored.Path,
		DocumentType:     docType,
		AIAnalysisStatus: entity.AnalysisProcessing,
		RiskFlags:        []string{},
	})
	if err != nil {
		if rmErr := s.files.Remove(stored.Path); rmErr != nil {
			s.log.Warn("remove orphaned upload", zap.String("path", stored.Path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("create document: %w", err)
	}

	analysed := s.analyse(ctx, *doc, business)
	if dealID != nil {
		s.events.Publish(ctx, realtime.DealTopic(*dealID), EventDocumentUploaded, analysed)
	}
	return analysed, nil
}

// dealCovers reports whether deal is about the given business.
func (s *DocumentService) dealCovers(ctx context.Context, deal *entity.Deal, businessID string) bool {
	if deal == nil {
		return false
	}
	match, err := s.store.GetMatchByID(ctx, deal.MatchID)
	return err == nil && match.BusinessID == businessID
}

// ListByDeal returns the documents attached to a deal the user participates in.
func (s *DocumentService) ListByDeal(ctx context.Context, userID, dealID string) ([]entity.Document, error) {
	deal, err := s.store.GetDealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !deal.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return s.store.ListDocumentsByDealID(ctx, dealID)
}

func (s *DocumentService) analyse(ctx context.Context, doc entity.Document, business *entity.Business) *entity.Document {
	analysis, riskFlags, err := s.evaluate(ctx, doc, business)
	if err == nil {
		updated, err := s.store.UpdateDocumentAnalysis(ctx, doc.ID, entity.AnalysisCompleted, analysis, riskFlags)
		if err == nil {
			return updated
		}
		s.log.Error("store document analysis", zap.String("document_id", doc.ID), zap.Error(err))
	} else {
		s.log.Warn("document analysis failed", zap.String("document_id", doc.ID), zap.Error(err))
	}

	updated, err := s.store.UpdateDocumentAnalysis(ctx, doc.ID, entity.AnalysisFailed, failedAnalysis, []string{})
	if err != nil {
		s.log.Error("mark document analysis failed", zap.String("document_id", doc.ID), zap.Error(err))
		return &doc
	}
	return updated
}

func (s *DocumentService) evaluate(ctx context.Context, doc entity.Document, business *entity.Business) (json.RawMessage, []string, error) {
	content, err := s.readPrefix(doc.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return s.runAnalysis(ctx, doc, content, business)
}

func (s *DocumentService) runAnalysis(ctx context.Context, doc entity.Document, content string, business *entity.Business) (json.RawMessage, []string, error) {
	result, err := s.advisor.AnalyzeDocument(ctx, content, doc.DocumentType, business)
	if err != nil {
		return nil, nil, err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, nil, fmt.Errorf("encode analysis: %w", err)
	}

	entityID := doc.ID
	if doc.BusinessID != nil {
		entityID = *doc.BusinessID
	}
	confidence := result.Valuation.Confidence
	if _, err := s.store.CreateInsight(ctx, entity.AIInsight{
		EntityType:  entity.InsightEntityBusiness,
		EntityID:    entityID,
		InsightType: entity.InsightRiskAssessment,
		Insights:    payload,
		Confidence:  &confidence,
	}); err != nil {
		s.log.Warn("record risk insight", zap.String("document_id", doc.ID), zap.Error(err))
	}

	flags := result.RiskFlags
	if flags == nil {
		flags = []string{}
	}
	return payload, flags, nil
}

func (s *DocumentService) readPrefix(path string) (string, error) {
	rc, err := s.files.Open(path)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	buf, err := io.ReadAll(io.LimitReader(rc, analysisPrefixBytes))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(buf), ""), nil
}
