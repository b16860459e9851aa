package validation

import "testing"

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{
			name:      "Valid pretty format",
			format:    "pretty",
			expectErr: false,
		},
		{
			name:      "Valid csv format",
			format:    "csv",
			expectErr: false,
		},
		{
			name:      "Invalid format",
			format:    "json",
			expectErr: true,
		},
		{
			name:      "Empty format",
			format:    "",
			expectErr: true,
		},
		{
			name:      "Case sensitive - uppercase",
			format:    "PRETTY",
			expectErr: true,
		},
		{
			name:      "Case sensitive - CSV uppercase",
			format:    "CSV",
			expectErr: true,
		},
		{
			name:      "Leading/trailing spaces",
			format:    " pretty ",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)

			if tt.expectErr {
				if err == nil {
					t.Errorf("ValidateOutputFormat(%s) expected error but got none", tt.format)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateOutputFormat(%s) unexpected error = %v", tt.format, err)
				}
			}
		})
	}
}

func TestValidateTerms(t *testing.T) {
	tests := []struct {
		name        string
		downPayment float64
		termMonths  int
		expectErr   bool
	}{
		{"Catalog defaults", 0, 60, false},
		{"Interactive defaults", 10, 60, false},
		{"Full down payment", 100, 12, false},
		{"Longest term", 0, MaxTermMonths, false},
		{"Negative down payment", -1, 60, true},
		{"Down payment above 100", 100.5, 60, true},
		{"Zero term", 10, 0, true},
		{"Negative term", 10, -6, true},
		{"Term too long", 10, MaxTermMonths + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTerms(tt.downPayment, tt.termMonths)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateTerms(%v, %d) expected error but got none", tt.downPayment, tt.termMonths)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateTerms(%v, %d) unexpected error = %v", tt.downPayment, tt.termMonths, err)
			}
		})
	}
}

func TestValidateAddressQuery(t *testing.T) {
	tests := map[string]bool{
		"":             false,
		"  ":           false,
		"ab":           false,
		" ab ":         false,
		"abc":          true,
		"Zür":          true,
		"Bahnhofstr 1": true,
	}

	for query, expected := range tests {
		if got := ValidateAddressQuery(query); got != expected {
			t.Errorf("ValidateAddressQuery(%q) = %v, expected %v", query, got, expected)
		}
	}
}
