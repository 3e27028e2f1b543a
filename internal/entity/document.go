package entity

import (
	"encoding/json"
	"time"
)

// DocumentType classifies uploaded files.
type DocumentType string

const (
	DocFinancialStatement DocumentType = "financial_statement"
	DocTaxReturn          DocumentType = "tax_return"
	DocLegal              DocumentType = "legal_document"
	DocOperational        DocumentType = "operational_doc"
	DocOther              DocumentType = "other"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocFinancialStatement, DocTaxReturn, DocLegal, DocOperational, DocOther:
		return true
	}
	return false
}

// AnalysisStatus tracks the AI analysis of a document.
type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

// Document is a file attached to a deal and/or business.
type Document struct {
	ID                string          `json:"id"`
	DealID            *string         `json:"dealId,omitempty"`
	BusinessID        *string         `json:"businessId,omitempty"`
	UploaderID        string          `json:"uploaderId"`
	FileName          string          `json:"fileName"`
	FileType          string          `json:"fileType"`
	FileSize          int64           `json:"fileSize"`
	FilePath          string          `json:"-"`
	DocumentType      DocumentType    `json:"documentType"`
	AIAnalysisStatus  AnalysisStatus  `json:"aiAnalysisStatus"`
	AIAnalysisResults json.RawMessage `json:"aiAnalysisResults,omitempty"`
	RiskFlags         []string        `json:"riskFlags"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
