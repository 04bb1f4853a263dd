package cerrors

import "testing"

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		phase    string
		category string
	}{
		{"CHK001", CHK001TypeMismatch, "check", "subtyping"},
		{"CHK004", CHK004MissingRequired, "check", "arguments"},
		{"CHK007", CHK007AmbiguousCall, "check", "dispatch"},
		{"CHK013", CHK013BadParameterOrder, "check", "signature"},
		{"CHK016", CHK016UnsupportedOp, "check", "operators"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, exists := GetErrorInfo(tt.code)
			if !exists {
				t.Fatalf("error code %s not found in registry", tt.code)
			}
			if info.Phase != tt.phase {
				t.Errorf("phase mismatch for %s: got %s, want %s", tt.code, info.Phase, tt.phase)
			}
			if info.Category != tt.category {
				t.Errorf("category mismatch for %s: got %s, want %s", tt.code, info.Category, tt.category)
			}
		})
	}
}

func TestCatastrophicThreshold(t *testing.T) {
	ch := NewChannel()
	for i := 0; i < CatastrophicThreshold; i++ {
		ch.Append(New(CHK001TypeMismatch, nil, "boom", nil))
	}
	if ch.Catastrophic() {
		t.Fatalf("should not be catastrophic at exactly the threshold")
	}
	ch.Append(New(CHK001TypeMismatch, nil, "boom", nil))
	if !ch.Catastrophic() {
		t.Fatalf("should be catastrophic once past the threshold")
	}
}
