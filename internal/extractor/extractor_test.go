package extractor

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSplitColumns(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"double spaces", "2024-01-02  Coffee Shop  -4.50  995.50", []string{"2024-01-02", "Coffee Shop", "-4.50", "995.50"}},
		{"tabs", "2024-01-02\tCoffee Shop\t-4.50", []string{"2024-01-02", "Coffee Shop", "-4.50"}},
		{"single spaces stay together", "Coffee Shop Main Street", []string{"Coffee Shop Main Street"}},
		{"mixed gaps", "Date   Description\tAmount", []string{"Date", "Description", "Amount"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitColumns(tt.line); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitColumns(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestIsReadableText(t *testing.T) {
	readable := []string{"Account statement\nDate  Description  Amount\n2024-01-02  Coffee  4.50\nClosing balance 995.50"}
	if !isReadableText(readable) {
		t.Error("plausible statement text rejected")
	}

	garbage := []string{strings.Repeat("Ã¿Þ¤", 50)}
	if isReadableText(garbage) {
		t.Error("binary garbage accepted")
	}

	if isReadableText([]string{"short"}) {
		t.Error("too-short text accepted")
	}

	// Readable characters but no statement vocabulary.
	noVocab := []string{strings.Repeat("lorem ipsum dolor sit amet ", 10)}
	if isReadableText(noVocab) {
		t.Error("text without statement vocabulary accepted")
	}
}

func TestFromFileDelimitedText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.csv")
	content := "Date,Description,Amount\n2024-01-02,Coffee Shop,-4.50\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	rows, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "Coffee Shop" {
		t.Errorf("unexpected grid: %v", rows)
	}
}

func TestFromFileMissing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
