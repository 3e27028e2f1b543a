package ai

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/octobees/dealmatch/internal/entity"
)

const (
	systemCompatibility   = "You are an expert M&A advisor analyzing buyer-seller compatibility. Always return valid JSON."
	systemDocument        = "You are an expert financial analyst specializing in business acquisitions. Always return valid JSON with numerical values where appropriate."
	systemRecommendations = "You are an expert M&A advisor providing practical deal guidance. Always return valid JSON."
	systemNDA             = "You are a legal expert specializing in business acquisition agreements. Generate professional, comprehensive legal documents."
)

func compatibilityPrompt(b entity.Business, p entity.BuyerProfile) string {
	var sb strings.Builder
	sb.WriteString("Analyze the compatibility between this business for sale and potential buyer.\n")
	sb.WriteString("Provide a detailed compatibility assessment in JSON format.\n\n")
	sb.WriteString("Business Profile:\n")
	fmt.Fprintf(&sb, "- Industry: %s\n", b.Industry)
	fmt.Fprintf(&sb, "- Annual Revenue: %s\n", b.AnnualRevenue)
	fmt.Fprintf(&sb, "- Years in Business: %s\n", optInt(b.YearsInBusiness))
	fmt.Fprintf(&sb, "- Employees: %s\n", optInt(b.Employees))
	fmt.Fprintf(&sb, "- Location: %s\n", b.Location)
	fmt.Fprintf(&sb, "- Selling Reason: %s\n", b.SellingReason)
	fmt.Fprintf(&sb, "- Timeline: %s\n\n", b.Timeline)
	sb.WriteString("Buyer Profile:\n")
	fmt.Fprintf(&sb, "- Budget Range: %s\n", p.BudgetRange)
	fmt.Fprintf(&sb, "- Preferred Industries: %s\n", strings.Join(p.PreferredIndustries, ", "))
	fmt.Fprintf(&sb, "- Experience: %s\n", p.Experience)
	fmt.Fprintf(&sb, "- Timeline: %s\n", p.Timeline)
	fmt.Fprintf(&sb, "- Investment Focus: %s\n", p.InvestmentFocus)
	fmt.Fprintf(&sb, "- Has Financing: %t\n\n", p.HasFinancing)
	sb.WriteString("Return JSON with: compatibilityScore (0-100), strengths (array of strings),\n")
	sb.WriteString("considerations (array of strings), recommendations (array of strings).")
	return sb.String()
}

func documentPrompt(content string, docType entity.DocumentType, b *entity.Business) string {
	var ctxBusiness entity.Business
	if b != nil {
		ctxBusiness = *b
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze this %s for a business acquisition.\n", docType)
	sb.WriteString("Provide comprehensive analysis in JSON format.\n\n")
	sb.WriteString("Business Context:\n")
	fmt.Fprintf(&sb, "- Industry: %s\n", ctxBusiness.Industry)
	fmt.Fprintf(&sb, "- Annual Revenue: %s\n", ctxBusiness.AnnualRevenue)
	fmt.Fprintf(&sb, "- Years in Business: %s\n\n", optInt(ctxBusiness.YearsInBusiness))
	fmt.Fprintf(&sb, "Document Type: %s\n", docType)
	fmt.Fprintf(&sb, "Document Content: %s\n\n", content)
	sb.WriteString("Analyze for:\n1. Key financial metrics and trends\n2. Risk factors and red flags\n")
	sb.WriteString("3. Valuation insights\n4. Investment recommendations\n\n")
	sb.WriteString("Return JSON with: summary, keyMetrics (object), riskFlags (array),\n")
	sb.WriteString("valuation (object with estimatedValue, confidence, methodology), recommendations (array).")
	return sb.String()
}

func recommendationsPrompt(d entity.Deal) string {
	value := "unknown"
	if d.EstimatedValue != nil {
		value = "$" + strconv.FormatFloat(*d.EstimatedValue, 'f', 0, 64)
	}
	return fmt.Sprintf(`Generate actionable recommendations for this business acquisition deal.

Current Stage: %s
Stage Progress: %d%%
Estimated Value: %s

Provide 3-5 specific, actionable recommendations for the current stage in JSON format.
Return JSON with: recommendations (array of strings).`, d.CurrentStage, d.StageProgress, value)
}

func ndaPrompt(businessType, structure string) string {
	return fmt.Sprintf(`Generate a professional NDA (Non-Disclosure Agreement) template for a business acquisition.

Business Type: %s
Transaction Structure: %s

Include standard clauses for:
- Definition of confidential information
- Permitted use of information
- Return of materials
- Term and termination
- Remedies for breach

Make it comprehensive but readable. Return the complete NDA text.`, businessType, structure)
}

func optInt(v *int) string {
	if v == nil {
		return "unknown"
	}
	return strconv.Itoa(*v)
}
