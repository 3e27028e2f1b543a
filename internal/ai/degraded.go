package ai

import "github.com/octobees/dealmatch/internal/entity"

const (
	degradedSummary     = "Document uploaded successfully. Upgrade for AI-powered analysis."
	degradedMethodology = "Manual review required"
	defaultNextStep     = "Continue with next steps"
)

var stageRecommendations = map[entity.DealStage][]string{
	entity.StageInitialDiscussion: {"Schedule a video call", "Prepare basic questions", "Share company overview"},
	entity.StageNDASigned:         {"Request financial statements", "Schedule site visit", "Prepare due diligence checklist"},
	entity.StageFinancialReview:   {"Analyze revenue trends", "Review expense categories", "Assess cash flow"},
	entity.StageDueDiligence:      {"Verify legal compliance", "Review employee contracts", "Check customer contracts"},
	entity.StageNegotiation:       {"Prepare offer terms", "Discuss payment structure", "Plan transition timeline"},
	entity.StageClosing:           {"Finalize legal documents", "Arrange financing", "Plan handover process"},
}

const ndaTemplate = `NON-DISCLOSURE AGREEMENT

This Non-Disclosure Agreement ("Agreement") is entered into on [DATE] between the parties for the purpose of evaluating a potential business acquisition.

CONFIDENTIAL INFORMATION:
All business information, financial data, customer lists, and proprietary processes shared during this evaluation.

PERMITTED USE:
Information may only be used for evaluating the potential acquisition and must not be disclosed to third parties.

RETURN OF MATERIALS:
All documents and materials must be returned within 30 days if the transaction does not proceed.

TERM:
This agreement remains in effect for 2 years from the date of signing.

For a comprehensive, legally-reviewed NDA template, consider upgrading your account.

[Signature Lines]`

func degradedCompatibility(score int) Compatibility {
	return Compatibility{
		CompatibilityScore: score,
		Strengths:          []string{"Industry alignment", "Budget compatibility"},
		Considerations:     []string{"Timeline differences", "Experience level"},
		Recommendations:    []string{"Schedule a call to discuss details", "Review business financials"},
	}
}

func degradedDocumentAnalysis() DocumentAnalysis {
	return DocumentAnalysis{
		Summary:    degradedSummary,
		KeyMetrics: map[string]any{"revenue": "N/A", "profitability": "N/A"},
		RiskFlags:  []string{},
		Valuation: Valuation{
			EstimatedValue: 0,
			Confidence:     0,
			Methodology:    degradedMethodology,
		},
		Recommendations: []string{"Consider upgrading for detailed financial analysis"},
	}
}

func degradedRecommendations(stage entity.DealStage) []string {
	if recs, ok := stageRecommendations[stage]; ok {
		return append([]string(nil), recs...)
	}
	return []string{defaultNextStep}
}
