package dto

import "github.com/octobees/dealmatch/internal/schema"

// Request body schemas, checked before binding.
var (
	RegisterSchema = schema.MustCompile(`{
  "type": "object",
  "required": ["email", "password"],
  "properties": {
    "email": {"type": "string", "minLength": 3, "maxLength": 320},
    "password": {"type": "string", "minLength": 8, "maxLength": 128},
    "firstName": {"type": "string", "maxLength": 100},
    "lastName": {"type": "string", "maxLength": 100}
  }
}`)

	LoginSchema = schema.MustCompile(`{
  "type": "object",
  "required": ["email", "password"],
  "properties": {
    "email": {"type": "string", "minLength": 1},
    "password": {"type": "string", "minLength": 1}
  }
}`)

	OnboardingSchema = schema.MustCompile(`{
  "type": "object",
  "required": ["userType"],
  "properties": {
    "userType": {"enum": ["seller", "buyer"]},
    "firstName": {"type": "string", "maxLength": 100},
    "lastName": {"type": "string", "maxLength": 100},
    "businessData": {"$ref": "#/definitions/business"},
    "buyerData": {"$ref": "#/definitions/buyer"}
  },
  "definitions": {
    "business": {
      "type": "object",
      "properties": {
        "name": {"type": "string", "minLength": 1, "maxLength": 200},
        "industry": {"type": "string", "minLength": 1, "maxLength": 100},
        "description": {"type": "string"},
        "annualRevenue": {"type": "string"},
        "yearsInBusiness": {"type": "integer", "minimum": 0},
        "employees": {"type": "integer", "minimum": 0},
        "location": {"type": "string"},
        "sellingReason": {"type": "string"},
        "timeline": {"type": "string"},
        "askingPrice": {"type": "number", "minimum": 0},
        "contactPhone": {"type": "string"},
        "isActive": {"type": "boolean"}
      }
    },
    "buyer": {
      "type": "object",
      "properties": {
        "budgetRange": {"type": "string"},
        "preferredIndustries": {"type": "array", "items": {"type": "string", "minLength": 1}},
        "experience": {"type": "string"},
        "investmentFocus": {"type": "string"},
        "timeline": {"type": "string"},
        "location": {"type": "string"},
        "acquisitionStructure": {"type": "array", "items": {"type": "string"}},
        "hasFinancing": {"type": "boolean"},
        "isActive": {"type": "boolean"}
      }
    }
  }
}`)

	BusinessSchema = schema.MustCompile(`{
  "type": "object",
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 200},
    "industry": {"type": "string", "minLength": 1, "maxLength": 100},
    "yearsInBusiness": {"type": "integer", "minimum": 0},
    "employees": {"type": "integer", "minimum": 0},
    "askingPrice": {"type": "number", "minimum": 0},
    "contactPhone": {"type": "string"},
    "isActive": {"type": "boolean"}
  }
}`)

	BuyerSchema = schema.MustCompile(`{
  "type": "object",
  "properties": {
    "preferredIndustries": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "acquisitionStructure": {"type": "array", "items": {"type": "string"}},
    "hasFinancing": {"type": "boolean"},
    "isActive": {"type": "boolean"}
  }
}`)

	CreateMatchSchema = schema.MustCompile(`{
  "type": "object",
  "required": ["businessId", "buyerId", "action"],
  "properties": {
    "businessId": {"type": "string", "minLength": 1},
    "buyerId": {"type": "string", "minLength": 1},
    "action": {"enum": ["accept", "reject"]}
  }
}`)

	MatchActionSchema = schema.MustCompile(`{
  "type": "object",
  "required": ["action"],
  "properties": {
    "action": {"enum": ["accept", "reject"]}
  }
}`)

	UpdateStageSchema = schema.MustCompile(`{
  "type": "object",
  "required": ["stage"],
  "properties": {
    "stage": {"type": "string", "minLength": 1},
    "progress": {"type": "integer"}
  }
}`)

	UpdateDealSchema = schema.MustCompile(`{
  "type": "object",
  "properties": {
    "notes": {"type": "string", "maxLength": 10000},
    "estimatedValue": {"type": "number", "minimum": 0},
    "milestoneDueDate": {"type": "string", "format": "date-time"}
  }
}`)

	SendMessageSchema = schema.MustCompile(`{
  "type": "object",
  "required": ["dealId", "content"],
  "properties": {
    "dealId": {"type": "string", "minLength": 1},
    "receiverId": {"type": "string"},
    "content": {"type": "string", "minLength": 1, "maxLength": 10000},
    "messageType": {"enum": ["text", "document", "system"]}
  }
}`)

	GenerateNDASchema = schema.MustCompile(`{
  "type": "object",
  "required": ["businessType", "transactionStructure"],
  "properties": {
    "businessType": {"type": "string", "minLength": 1, "maxLength": 200},
    "transactionStructure": {"type": "string", "minLength": 1, "maxLength": 200}
  }
}`)
)
