// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import "testing"

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		status Status
		reason ReasonCode
	}{
		{"empty", "", StatusBlocked, ReasonEmpty},
		{"whitespace only", "   ", StatusBlocked, ReasonEmpty},
		{"single char", "a", StatusBlocked, ReasonEmpty},
		{"numbers only", "123", StatusBlocked, ReasonNumbersOnly},
		{"long number", "4815162342", StatusBlocked, ReasonNumbersOnly},
		{"angle brackets", "Acme <script>", StatusBlocked, ReasonInvalidChars},
		{"curly braces", "Acme {Corp}", StatusBlocked, ReasonInvalidChars},
		{"pipe", "Acme|Corp", StatusBlocked, ReasonInvalidChars},
		{"backtick", "Acme`Corp", StatusBlocked, ReasonInvalidChars},
		{"honorific", "Dr. John Smith", StatusBlocked, ReasonPersonalName},
		{"honorific no period", "Mrs Jane Doe", StatusBlocked, ReasonPersonalName},
		{"middle initial", "John Q. Public", StatusBlocked, ReasonPersonalName},
		{"two words no suffix", "John Smith", StatusWarn, ReasonPossiblePersonalName},
		{"two words with suffix", "Phoenix LLC", StatusValid, ""},
		{"suffix with period", "Acme Inc.", StatusValid, ""},
		{"suffix any case", "Acme CORP", StatusValid, ""},
		{"single word brand", "Tesla", StatusValid, ""},
		{"three words", "Bank of America", StatusValid, ""},
		{"alphanumeric", "3M", StatusValid, ""},
		{"ampersand", "Johnson & Johnson", StatusValid, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.input)
			if got.Status != tt.status {
				t.Errorf("Check(%q).Status = %q, want %q", tt.input, got.Status, tt.status)
			}
			if got.Reason != tt.reason {
				t.Errorf("Check(%q).Reason = %q, want %q", tt.input, got.Reason, tt.reason)
			}
		})
	}
}

func TestCheckTrimsBeforeLengthRule(t *testing.T) {
	got := Check("  Tesla  ")
	if got.Status != StatusValid {
		t.Errorf("trimmed valid name rejected: %+v", got)
	}
}

func TestMessageNonEmptyForFailures(t *testing.T) {
	for _, input := range []string{"", "123", "Acme|Corp", "Dr. John Smith", "John Smith"} {
		r := Check(input)
		if msg := Message(input, r); msg == "" {
			t.Errorf("Message(%q, %+v) = empty, want explanation", input, r)
		}
	}
}
