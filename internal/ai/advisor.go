package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/metrics"
	"github.com/octobees/dealmatch/internal/schema"
)

// ErrAnalysisFailed is returned when a configured provider errors or answers with
// output that does not honour the JSON contract.
var ErrAnalysisFailed = errors.New("analysis failed")

const (
	opCompatibility   = "compatibility"
	opDocument        = "document_analysis"
	opRecommendations = "recommendations"
	opNDA             = "nda"

	modeProvider = "provider"
	modeDegraded = "degraded"
)

// Compatibility is the buyer/seller fit assessment.
type Compatibility struct {
	CompatibilityScore int      `json:"compatibilityScore"`
	Strengths          []string `json:"strengths"`
	Considerations     []string `json:"considerations"`
	Recommendations    []string `json:"recommendations"`
}

// Valuation is the valuation section of a document analysis.
type Valuation struct {
	EstimatedValue float64 `json:"estimatedValue"`
	Confidence     float64 `json:"confidence"`
	Methodology    string  `json:"methodology"`
}

// DocumentAnalysis is the structured result of analysing an uploaded document.
type DocumentAnalysis struct {
	Summary         string         `json:"summary"`
	KeyMetrics      map[string]any `json:"keyMetrics"`
	RiskFlags       []string       `json:"riskFlags"`
	Valuation       Valuation      `json:"valuation"`
	Recommendations []string       `json:"recommendations"`
}

// InsightRecorder stores AI outputs for audit.
type InsightRecorder interface {
	CreateInsight(ctx context.Context, insight entity.AIInsight) (*entity.AIInsight, error)
}

// Option customises an Advisor.
type Option func(*Advisor)

// WithTimeout bounds every provider call.
func WithTimeout(d time.Duration) Option {
	return func(a *Advisor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithInsightRecorder records successful provider compatibility runs.
func WithInsightRecorder(r InsightRecorder) Option {
	return func(a *Advisor) { a.recorder = r }
}

// WithLogger sets the logger for provider failures.
func WithLogger(l *zap.Logger) Option {
	return func(a *Advisor) {
		if l != nil {
			a.log = l
		}
	}
}

// Advisor produces compatibility scores, document analyses, stage guidance and NDA drafts.
// A nil Completer puts it in degraded mode, where every operation answers with static content.
type Advisor struct {
	completer Completer
	recorder  InsightRecorder
	log       *zap.Logger
	timeout   time.Duration
	intn      func(n int) int
}

// NewAdvisor builds an advisor around an optional completer.
func NewAdvisor(completer Completer, opts ...Option) *Advisor {
	a := &Advisor{
		completer: completer,
		log:       zap.NewNop(),
		timeout:   60 * time.Second,
		intn:      rand.IntN,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether a provider is configured.
func (a *Advisor) Enabled() bool { return a.completer != nil }

// ScoreCompatibility rates how well a buyer profile fits a business.
// In degraded mode the score is a random integer in [60,100].
func (a *Advisor) ScoreCompatibility(ctx context.Context, business entity.Business, buyer entity.BuyerProfile) (Compatibility, error) {
	if !a.Enabled() {
		metrics.AIRequests.WithLabelValues(opCompatibility, modeDegraded, "ok").Inc()
		return degradedCompatibility(60 + a.intn(41)), nil
	}

	raw, err := a.complete(ctx, opCompatibility, Request{System: systemCompatibility, Prompt: compatibilityPrompt(business, buyer), JSON: true}, compatibilitySchema)
	if err != nil {
		return Compatibility{}, err
	}

	var parsed struct {
		CompatibilityScore float64  `json:"compatibilityScore"`
		Strengths          []string `json:"strengths"`
		Considerations     []string `json:"considerations"`
		Recommendations    []string `json:"recommendations"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Compatibility{}, a.fail(opCompatibility, err)
	}

	result := Compatibility{
		CompatibilityScore: int(math.Round(clamp(parsed.CompatibilityScore, 0, 100))),
		Strengths:          orEmpty(parsed.Strengths),
		Considerations:     orEmpty(parsed.Considerations),
		Recommendations:    orEmpty(parsed.Recommendations),
	}
	a.record(ctx, business.ID+"-"+buyer.ID, result)
	return result, nil
}

// AnalyzeDocument reviews document text in the context of the business it belongs to.
func (a *Advisor) AnalyzeDocument(ctx context.Context, content string, docType entity.DocumentType, business *entity.Business) (DocumentAnalysis, error) {
	if !a.Enabled() {
		metrics.AIRequests.WithLabelValues(opDocument, modeDegraded, "ok").Inc()
		return degradedDocumentAnalysis(), nil
	}

	raw, err := a.complete(ctx, opDocument, Request{System: systemDocument, Prompt: documentPrompt(content, docType, business), JSON: true}, documentSchema)
	if err != nil {
		return DocumentAnalysis{}, err
	}

	var parsed struct {
		Summary    string         `json:"summary"`
		KeyMetrics map[string]any `json:"keyMetrics"`
		RiskFlags  []string       `json:"riskFlags"`
		Valuation  struct {
			EstimatedValue *float64 `json:"estimatedValue"`
			Confidence     *float64 `json:"confidence"`
			Methodology    string   `json:"methodology"`
		} `json:"valuation"`
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return DocumentAnalysis{}, a.fail(opDocument, err)
	}

	result := DocumentAnalysis{
		Summary:         parsed.Summary,
		KeyMetrics:      parsed.KeyMetrics,
		RiskFlags:       orEmpty(parsed.RiskFlags),
		Recommendations: orEmpty(parsed.Recommendations),
		Valuation: Valuation{
			Confidence:  0.5,
			Methodology: parsed.Valuation.Methodology,
		},
	}
	if result.Summary == "" {
		result.Summary = "Analysis completed"
	}
	if result.KeyMetrics == nil {
		result.KeyMetrics = map[string]any{}
	}
	if v := parsed.Valuation.EstimatedValue; v != nil {
		result.Valuation.EstimatedValue = math.Max(*v, 0)
	}
	if c := parsed.Valuation.Confidence; c != nil {
		result.Valuation.Confidence = clamp(*c, 0, 1)
	}
	if result.Valuation.Methodology == "" {
		result.Valuation.Methodology = "Comparative analysis"
	}
	return result, nil
}

// RecommendNextSteps suggests actions for the deal's current stage.
func (a *Advisor) RecommendNextSteps(ctx context.Context, deal entity.Deal) ([]string, error) {
	if !a.Enabled() {
		metrics.AIRequests.WithLabelValues(opRecommendations, modeDegraded, "ok").Inc()
		return degradedRecommendations(deal.CurrentStage), nil
	}

	raw, err := a.complete(ctx, opRecommendations, Request{System: systemRecommendations, Prompt: recommendationsPrompt(deal), JSON: true}, recommendationsSchema)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, a.fail(opRecommendations, err)
	}
	return orEmpty(parsed.Recommendations), nil
}

// DraftNDA produces an NDA text for the given business type and transaction structure.
func (a *Advisor) DraftNDA(ctx context.Context, businessType, structure string) (string, error) {
	if !a.Enabled() {
		metrics.AIRequests.WithLabelValues(opNDA, modeDegraded, "ok").Inc()
		return ndaTemplate, nil
	}

	raw, err := a.complete(ctx, opNDA, Request{System: systemNDA, Prompt: ndaPrompt(businessType, structure)}, nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", a.fail(opNDA, errors.New("empty completion"))
	}
	return text, nil
}

// complete runs one provider call under the advisor timeout and validates JSON output
// against contract when one is given.
func (a *Advisor) complete(ctx context.Context, op string, req Request, contract *schema.Schema) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	out, err := a.completer.Complete(ctx, req)
	metrics.AIDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, a.fail(op, err)
	}

	raw := []byte(out)
	if contract != nil {
		if err := contract.Validate(raw); err != nil {
			return nil, a.fail(op, err)
		}
	}
	metrics.AIRequests.WithLabelValues(op, modeProvider, "ok").Inc()
	return raw, nil
}

func (a *Advisor) fail(op string, cause error) error {
	metrics.AIRequests.WithLabelValues(op, modeProvider, "error").Inc()
	a.log.Warn("ai provider call failed", zap.String("operation", op), zap.Error(cause))
	return fmt.Errorf("%w: %s: %v", ErrAnalysisFailed, op, cause)
}

func (a *Advisor) record(ctx context.Context, entityID string, result Compatibility) {
	if a.recorder == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	confidence := float64(result.CompatibilityScore) / 100
	if _, err := a.recorder.CreateInsight(ctx, entity.AIInsight{
		EntityType:  entity.InsightEntityMatch,
		EntityID:    entityID,
		InsightType: entity.InsightCompatibility,
		Insights:    payload,
		Confidence:  &confidence,
	}); err != nil {
		a.log.Warn("record compatibility insight", zap.String("entity_id", entityID), zap.Error(err))
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
