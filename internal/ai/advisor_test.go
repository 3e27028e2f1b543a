package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/octobees/dealmatch/internal/entity"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) CreateInsight(ctx context.Context, insight entity.AIInsight) (*entity.AIInsight, error) {
	args := m.Called(ctx, insight)
	return &insight, args.Error(0)
}

func sampleBusiness() entity.Business {
	years := 12
	return entity.Business{ID: "biz-1", Industry: "technology", AnnualRevenue: "1m_5m", YearsInBusiness: &years}
}

func sampleBuyer() entity.BuyerProfile {
	return entity.BuyerProfile{ID: "buyer-1", PreferredIndustries: []string{"technology"}, HasFinancing: true}
}

func TestDegradedCompatibilityScoreRange(t *testing.T) {
	advisor := NewAdvisor(nil)
	for i := 0; i < 200; i++ {
		result, err := advisor.ScoreCompatibility(context.Background(), sampleBusiness(), sampleBuyer())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.CompatibilityScore, 60)
		assert.LessOrEqual(t, result.CompatibilityScore, 100)
		assert.NotEmpty(t, result.Strengths)
	}

	advisor.intn = func(n int) int { return n - 1 }
	result, _ := advisor.ScoreCompatibility(context.Background(), sampleBusiness(), sampleBuyer())
	assert.Equal(t, 100, result.CompatibilityScore)
}

func TestDegradedDocumentAnalysis(t *testing.T) {
	result, err := NewAdvisor(nil).AnalyzeDocument(context.Background(), "p&l", entity.DocFinancialStatement, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, result.RiskFlags)
	assert.Zero(t, result.Valuation.Confidence)
	assert.Equal(t, "Manual review required", result.Valuation.Methodology)
	assert.Equal(t, "N/A", result.KeyMetrics["revenue"])
}

func TestDegradedRecommendationsAndNDA(t *testing.T) {
	advisor := NewAdvisor(nil)

	recs, err := advisor.RecommendNextSteps(context.Background(), entity.Deal{CurrentStage: entity.StageFinancialReview})
	require.NoError(t, err)
	assert.Equal(t, []string{"Analyze revenue trends", "Review expense categories", "Assess cash flow"}, recs)

	recs, _ = advisor.RecommendNextSteps(context.Background(), entity.Deal{CurrentStage: entity.StageCompleted})
	assert.Equal(t, []string{"Continue with next steps"}, recs)

	nda, err := advisor.DraftNDA(context.Background(), "retail", "asset purchase")
	require.NoError(t, err)
	assert.Contains(t, nda, "CONFIDENTIAL INFORMATION")
	assert.Contains(t, nda, "[Signature Lines]")
}

func TestProviderCompatibilityClampsAndRecords(t *testing.T) {
	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return r.JSON && r.System == systemCompatibility
	})).Return(`{"compatibilityScore": 140.2, "strengths": ["Sector fit"]}`, nil)

	recorder := new(mockRecorder)
	recorder.On("CreateInsight", mock.Anything, mock.MatchedBy(func(in entity.AIInsight) bool {
		return in.EntityType == entity.InsightEntityMatch && in.EntityID == "biz-1-buyer-1" &&
			in.Confidence != nil && *in.Confidence == 1
	})).Return(nil)

	advisor := NewAdvisor(completer, WithInsightRecorder(recorder))
	result, err := advisor.ScoreCompatibility(context.Background(), sampleBusiness(), sampleBuyer())
	require.NoError(t, err)
	assert.Equal(t, 100, result.CompatibilityScore)
	assert.Equal(t, []string{"Sector fit"}, result.Strengths)
	assert.Equal(t, []string{}, result.Considerations)

	completer.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestProviderFailuresAreAnalysisFailed(t *testing.T) {
	tests := map[string]struct {
		out string
		err error
	}{
		"provider error":  {err: errors.New("503")},
		"not json":        {out: "I think they fit well"},
		"schema mismatch": {out: `{"compatibilityScore": "high"}`},
		"missing score":   {out: `{"strengths": []}`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			completer := new(mockCompleter)
			completer.On("Complete", mock.Anything, mock.Anything).Return(tt.out, tt.err)

			_, err := NewAdvisor(completer).ScoreCompatibility(context.Background(), sampleBusiness(), sampleBuyer())
			assert.ErrorIs(t, err, ErrAnalysisFailed)
		})
	}
}

func TestProviderDocumentDefaults(t *testing.T) {
	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).
		Return(`{"riskFlags": ["Declining margins"], "valuation": {"estimatedValue": 2500000, "confidence": 3}}`, nil)

	result, err := NewAdvisor(completer).AnalyzeDocument(context.Background(), "text", entity.DocTaxReturn, nil)
	require.NoError(t, err)
	assert.Equal(t, "Analysis completed", result.Summary)
	assert.Equal(t, []string{"Declining margins"}, result.RiskFlags)
	assert.Equal(t, 1.0, result.Valuation.Confidence)
	assert.Equal(t, 2500000.0, result.Valuation.EstimatedValue)
	assert.Equal(t, "Comparative analysis", result.Valuation.Methodology)

	completer = new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return(`{"summary": "ok"}`, nil)
	result, err = NewAdvisor(completer).AnalyzeDocument(context.Background(), "text", entity.DocTaxReturn, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.Valuation.Confidence)
}

func TestProviderCallHonoursTimeout(t *testing.T) {
	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded)

	advisor := NewAdvisor(completer, WithTimeout(20*time.Millisecond))
	_, err := advisor.RecommendNextSteps(context.Background(), entity.Deal{CurrentStage: entity.StageClosing})
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}
