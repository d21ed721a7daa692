package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/openrailwaymap/railsearch/internal/domain"
	"github.com/openrailwaymap/railsearch/internal/domain/search/mode"
)

func str(s string) *string { return &s }

func requireRequestError(t *testing.T, err error, want domain.ErrorType) *domain.RequestError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	var re *domain.RequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected *domain.RequestError, got %T: %v", err, err)
	}
	if re.Type != want {
		t.Fatalf("error type = %q, want %q", re.Type, want)
	}
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Error("request error should unwrap to ErrInvalidRequest")
	}
	return re
}

func TestParse_SingleField(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		mode   mode.Mode
		term   string
	}{
		{"name", Params{Name: str("Berlin Hbf")}, mode.Name, "Berlin Hbf"},
		{"ref", Params{Ref: str("BL")}, mode.Ref, "BL"},
		{"uicRef", Params{UICRef: str("8011160")}, mode.UICRef, "8011160"},
		{"q", Params{Q: str("8011160")}, mode.Generic, "8011160"},
		{"empty siblings ignored", Params{Q: str(""), Name: str("Köln"), Ref: str("")}, mode.Name, "Köln"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Parse(tc.params, DefaultLimits())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Mode() != tc.mode {
				t.Errorf("Mode() = %q, want %q", r.Mode(), tc.mode)
			}
			if r.Term() != tc.term {
				t.Errorf("Term() = %q, want %q", r.Term(), tc.term)
			}
			if r.Limit() != DefaultLimit {
				t.Errorf("Limit() = %d, want default %d", r.Limit(), DefaultLimit)
			}
		})
	}
}

func TestParse_MultipleFields(t *testing.T) {
	combos := []Params{
		{Ref: str("8011160"), Name: str("Berlin")},
		{Q: str("a"), UICRef: str("b")},
		{Q: str("a"), Name: str("b"), Ref: str("c"), UICRef: str("d")},
	}
	for _, p := range combos {
		_, err := Parse(p, DefaultLimits())
		re := requireRequestError(t, err, domain.ErrorMultipleQueryArgs)
		if !strings.Contains(re.Detail, "q, name, ref, uicRef") {
			t.Errorf("detail should list allowed fields, got %q", re.Detail)
		}
	}
}

func TestParse_NoField(t *testing.T) {
	combos := []Params{
		{},
		{Q: str(""), Name: str("")},
		{Limit: str("10")},
	}
	for _, p := range combos {
		_, err := Parse(p, DefaultLimits())
		re := requireRequestError(t, err, domain.ErrorNoQueryArg)
		if !strings.Contains(re.Detail, "uicRef") {
			t.Errorf("detail should list allowed fields, got %q", re.Detail)
		}
	}
}

func TestParse_FieldErrorsWinOverLimitErrors(t *testing.T) {
	_, err := Parse(Params{Q: str("a"), Name: str("b"), Limit: str("abc")}, DefaultLimits())
	requireRequestError(t, err, domain.ErrorMultipleQueryArgs)
}

func TestParse_Limit(t *testing.T) {
	tests := []struct {
		limit   string
		want    int
		errType domain.ErrorType
	}{
		{"1", 1, ""},
		{"50", 50, ""},
		{"200", 200, ""},
		{"201", 0, domain.ErrorLimitTooHigh},
		{"100000", 0, domain.ErrorLimitTooHigh},
		{"abc", 0, domain.ErrorLimitNotInteger},
		{"1.5", 0, domain.ErrorLimitNotInteger},
		{"", 0, domain.ErrorLimitNotInteger},
		{"0", 0, domain.ErrorLimitNotInteger},
		{"-3", 0, domain.ErrorLimitNotInteger},
		{" 5", 0, domain.ErrorLimitNotInteger},
		{"5 ", 0, domain.ErrorLimitNotInteger},
		{"1_0", 0, domain.ErrorLimitNotInteger},
		{"+5", 5, ""},
	}
	for _, tc := range tests {
		t.Run("limit="+tc.limit, func(t *testing.T) {
			r, err := Parse(Params{Name: str("Berlin"), Limit: str(tc.limit)}, DefaultLimits())
			if tc.errType != "" {
				requireRequestError(t, err, tc.errType)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Limit() != tc.want {
				t.Errorf("Limit() = %d, want %d", r.Limit(), tc.want)
			}
		})
	}
}

func TestParse_CustomLimits(t *testing.T) {
	limits := Limits{Default: 5, Max: 10}

	r, err := Parse(Params{Ref: str("X")}, limits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != 5 {
		t.Errorf("Limit() = %d, want 5", r.Limit())
	}

	_, err = Parse(Params{Ref: str("X"), Limit: str("11")}, limits)
	re := requireRequestError(t, err, domain.ErrorLimitTooHigh)
	if !strings.Contains(re.Detail, "10") {
		t.Errorf("detail should mention max, got %q", re.Detail)
	}
}

func TestParse_ZeroLimitsFallBackToDefaults(t *testing.T) {
	r, err := Parse(Params{Ref: str("X")}, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
}

func TestHasWildcard(t *testing.T) {
	tests := []struct {
		term string
		want bool
	}{
		{"Berlin Hbf", false},
		{"Frankfurt (Main) Hbf", false},
		{"100%", true},
		{"Berlin_Hbf", true},
		{"%", true},
		{"_", true},
		{"", false},
	}
	for _, tc := range tests {
		if got := HasWildcard(tc.term); got != tc.want {
			t.Errorf("HasWildcard(%q) = %v, want %v", tc.term, got, tc.want)
		}
	}
}
