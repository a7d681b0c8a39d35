package xlsx

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
)

func TestExportRoundTrip(t *testing.T) {
	exporter := NewExporter()

	table := &domain.Table{
		Columns: []string{"Company", "Confidence"},
		Rows: []map[string]string{
			{"Company": "Acme", "Confidence": "85%"},
			{"Company": "Beta", "Confidence": "62%"},
		},
		Total: 2,
	}

	data, err := exporter.Export(table)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open exported workbook: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Company" || rows[0][1] != "Confidence" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "Acme" || rows[2][1] != "62%" {
		t.Fatalf("rows = %v", rows[1:])
	}
}

func TestExportRejectsEmptyTable(t *testing.T) {
	exporter := NewExporter()

	if _, err := exporter.Export(nil); err == nil {
		t.Fatal("expected error for nil table")
	}
	if _, err := exporter.Export(&domain.Table{}); err == nil {
		t.Fatal("expected error for table without columns")
	}
}
