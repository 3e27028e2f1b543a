package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/octobees/dealmatch/internal/repository"
	"github.com/octobees/dealmatch/internal/service/workflow"
)

var (
	ErrBusinessProfileRequired = errors.New("business profile required")
	ErrBuyerProfileRequired    = errors.New("buyer profile required")
	ErrInvalidAction           = errors.New("invalid match action")
	ErrInvalidUserType         = errors.New("invalid user type")
	ErrMatchClosed             = repository.ErrMatchClosed
	ErrNotParticipant          = errors.New("not a participant")
	ErrInvalidStage            = workflow.ErrInvalidStage
	ErrInvalidStageTransition  = workflow.ErrInvalidTransition
	ErrInvalidProgress         = errors.New("progress must be between 0 and 100")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrDocumentTooLarge        = errors.New("document too large")
	ErrValidation              = errors.New("validation failed")
)

// ValidationError lists field-level problems with a request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidField(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
