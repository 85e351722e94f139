package errors

import (
	"strings"
	"testing"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Orders API", false},
		{"empty", "", false},
		{"multiline", "Orders\nAPI", false},
		{"unicode", "Zahlungsdienst ✓", false},

		{"too long", strings.Repeat("a", 600), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "archboard:diagram", false},
		{"namespaced", "team-a:archboard:diagram", false},

		{"empty", "", true},
		{"space", "arch board", true},
		{"newline", "arch\nboard", true},
		{"too long", strings.Repeat("k", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateExportPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantCode Code
	}{
		{"json", "diagram.json", false, ""},
		{"png nested", "out/diagram.png", false, ""},
		{"yaml upper", "DIAGRAM.YAML", false, ""},
		{"hcl", "diagram.hcl", false, ""},

		{"empty", "", true, ErrCodeInvalidPath},
		{"null byte", "dia\x00gram.json", true, ErrCodeInvalidPath},
		{"unknown ext", "diagram.pdf", true, ErrCodeInvalidFormat},
		{"no ext", "diagram", true, ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExportPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateExportPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, tt.wantCode) {
				t.Errorf("ValidateExportPath(%q) code = %v, want %v", tt.input, GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeStorageUnreadable,
		ErrCodeStorageCorrupt,
		ErrCodeImportMalformed,
		ErrCodeImportParseFailure,
		ErrCodeExportTargetAbsent,
		ErrCodeInvalidInput,
		ErrCodeInvalidEndpoint,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeUnsupportedVersion,
		ErrCodeNotFound,
		ErrCodeIDCollision,
		ErrCodeBusy,
		ErrCodeInternal,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
