package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
)

func TestWriteWorkbook(t *testing.T) {
	docs := []domain.StoredDocument{
		{
			ID:        "b",
			Body:      domain.Document{"yeshivaName": "Second", "campaignGoal": "450000"},
			CreatedAt: time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "a",
			Body:      domain.Document{"yeshivaName": "=HYPERLINK(\"x\")", "campaignGoal": "150000"},
			CreatedAt: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := New(language.English, nil).Write(&buf, docs); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "Leads" {
		t.Fatalf("sheets = %v", sheets)
	}
	tests := []struct {
		cell, want string
	}{
		{"A1", "Received"},
		{"B1", "Yeshiva"},
		{"B2", "Second"},
		{"J2", "₪9,900"},
		{"B3", "'=HYPERLINK(\"x\")"},
		{"J3", "₪6,500"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue("Leads", tt.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("%s = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestWriteEmptyHebrew(t *testing.T) {
	var buf bytes.Buffer
	if err := New(language.Hebrew, nil).Write(&buf, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	got, _ := f.GetCellValue("Leads", "A1")
	if got != "התקבל" {
		t.Errorf("A1 = %q", got)
	}
	rows, _ := f.GetRows("Leads")
	if len(rows) != 1 {
		t.Errorf("rows = %d, want header only", len(rows))
	}
}
