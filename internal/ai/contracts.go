package ai

import "github.com/octobees/dealmatch/internal/schema"

var compatibilitySchema = schema.MustCompile(`{
  "type": "object",
  "required": ["compatibilityScore"],
  "properties": {
    "compatibilityScore": {"type": "number"},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "considerations": {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}}
  }
}`)

var documentSchema = schema.MustCompile(`{
  "type": "object",
  "properties": {
    "summary": {"type": "string"},
    "keyMetrics": {"type": "object"},
    "riskFlags": {"type": "array", "items": {"type": "string"}},
    "valuation": {
      "type": "object",
      "properties": {
        "estimatedValue": {"type": "number"},
        "confidence": {"type": "number"},
        "methodology": {"type": "string"}
      }
    },
    "recommendations": {"type": "array", "items": {"type": "string"}}
  }
}`)

var recommendationsSchema = schema.MustCompile(`{
  "type": "object",
  "required": ["recommendations"],
  "properties": {
    "recommendations": {"type": "array", "items": {"type": "string"}}
  }
}`)
