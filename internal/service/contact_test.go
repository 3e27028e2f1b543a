package service

import (
	"errors"
	"testing"
)

func TestContactNormalizer_NormalizeEmail(t *testing.T) {
	n := NewContactNormalizer("US")

	tests := map[string]struct {
		input   string
		want    string
		wantErr bool
	}{
		"lower cases and trims": {input: "  Owner@Example.COM ", want: "owner@example.com"},
		"unicode domain":        {input: "jane@bücher.de", want: "jane@xn--bcher-kva.de"},
		"missing at":            {input: "owner.example.com", wantErr: true},
		"missing tld":           {input: "owner@example", wantErr: true},
		"empty label":           {input: "owner@example..com", wantErr: true},
		"empty local part":      {input: "@example.com", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := n.NormalizeEmail(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestContactNormalizer_NormalizePhone(t *testing.T) {
	n := NewContactNormalizer("")

	tests := map[string]struct {
		input   string
		want    string
		wantErr bool
	}{
		"national format": {input: " (415) 555-1234 ", want: "+14155551234"},
		"already e164":    {input: "+14155551234", want: "+14155551234"},
		"blank":           {input: "  ", want: ""},
		"too short":       {input: "12345", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := n.NormalizePhone(tc.input)
			if tc.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) || vErr.Fields["contactPhone"] == "" {
					t.Fatalf("expected contactPhone validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
