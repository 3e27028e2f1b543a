package service

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const defaultPhoneRegion = "US"

// ContactNormalizer canonicalises account emails and business phone numbers.
type ContactNormalizer struct {
	DefaultRegion string
}

// NewContactNormalizer builds a normalizer; an empty region falls back to US.
func NewContactNormalizer(defaultRegion string) *ContactNormalizer {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &ContactNormalizer{DefaultRegion: region}
}

// NormalizeEmail lower-cases the address and converts its domain to ASCII.
func (n *ContactNormalizer) NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || !isDomainValid(domain) {
		return "", invalidField("email", "must be a valid email address")
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return "", invalidField("email", "must be a valid email address")
	}
	email = local + "@" + asciiDomain
	if !emailPattern.MatchString(email) {
		return "", invalidField("email", "must be a valid email address")
	}
	return email, nil
}

// NormalizePhone formats a phone number as E.164. Blank input stays blank.
func (n *ContactNormalizer) NormalizePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	normalized := normalizePhone(raw, n.DefaultRegion)
	if normalized == "" {
		return "", invalidField("contactPhone", "must be a valid phone number")
	}
	return normalized, nil
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
