package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/dealmatch/internal/entity"
)

const documentColumns = `id, deal_id, business_id, uploader_id, file_name, file_type, file_size, file_path, document_type,
    ai_analysis_status, ai_analysis_results, risk_flags, created_at, updated_at`

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var doc entity.Document
	var docType, status string
	var results []byte
	if err := row.Scan(&doc.ID, &doc.DealID, &doc.BusinessID, &doc.UploaderID, &doc.FileName, &doc.FileType, &doc.FileSize,
		&doc.FilePath, &docType, &status, &results, &doc.RiskFlags, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.DocumentType = entity.DocumentType(docType)
	doc.AIAnalysisStatus = entity.AnalysisStatus(status)
	if len(results) > 0 {
		doc.AIAnalysisResults = json.RawMessage(results)
	}
	if doc.RiskFlags == nil {
		doc.RiskFlags = []string{}
	}
	return &doc, nil
}

func jsonbArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

// CreateDocument inserts document metadata.
func (r *PGXStore) CreateDocument(ctx context.Context, doc entity.Document) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO documents (id, deal_id, business_id, uploader_id, file_name, file_type, file_size, file_path, document_type,
            ai_analysis_status, ai_analysis_results, risk_flags, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
        RETURNING `+documentColumns,
		uuid.NewString(), doc.DealID, doc.BusinessID, doc.UploaderID, doc.FileName, doc.FileType, doc.FileSize, doc.FilePath,
		string(doc.DocumentType), string(doc.AIAnalysisStatus), jsonbArg(doc.AIAnalysisResults), textArray(doc.RiskFlags), time.Now().UTC())

	created, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return created, nil
}

// GetDocumentByID retrieves document metadata.
func (r *PGXStore) GetDocumentByID(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := scanDocument(r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		return nil, scanErr(err, "document", id)
	}
	return doc, nil
}

// ListDocumentsByDealID lists a deal's documents, newest first.
func (r *PGXStore) ListDocumentsByDealID(ctx context.Context, dealID string) ([]entity.Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE deal_id = $1 ORDER BY created_at DESC`, dealID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return collect(rows, "document", scanDocument)
}

// UpdateDocumentAnalysis stores the analysis outcome.
func (r *PGXStore) UpdateDocumentAnalysis(ctx context.Context, id string, status entity.AnalysisStatus, results json.RawMessage, riskFlags []string) (*entity.Document, error) {
	var b updateBuilder
	b.set("ai_analysis_status", string(status))
	if results != nil {
		b.set("ai_analysis_results", jsonbArg(results))
	}
	if riskFlags != nil {
		b.set("risk_flags", riskFlags)
	}

	query, args := b.query("documents", id, documentColumns)
	doc, err := scanDocument(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, scanErr(err, "document", id)
	}
	return doc, nil
}
