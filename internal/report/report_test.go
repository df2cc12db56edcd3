package report

import (
	"bytes"
	"strings"
	"testing"

	"fun-quiz/internal/domain"
	"github.com/xuri/excelize/v2"
)

func sampleAnswers() []domain.AnswerRecord {
	mars, berlin := "Mars", "Berlin"
	return []domain.AnswerRecord{
		{Question: "Red planet?", Selected: &mars, Correct: "Mars", IsCorrect: true},
		{Question: "Capital of France?", Selected: &berlin, Correct: "Paris", IsCorrect: false},
		{Question: "Striped animal?", Selected: nil, Correct: "Zebra", IsCorrect: false},
	}
}

func TestBuildReportClassifiesRows(t *testing.T) {
	rows := BuildReport(sampleAnswers())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	want := []domain.Outcome{domain.OutcomeCorrect, domain.OutcomeIncorrect, domain.OutcomeSkipped}
	for i, row := range rows {
		if row.Outcome != want[i] {
			t.Fatalf("row %d: expected %s, got %s", i, want[i], row.Outcome)
		}
	}
	if rows[1].Selected != "Berlin" || rows[1].Correct != "Paris" {
		t.Fatalf("unexpected incorrect row %+v", rows[1])
	}
	if rows[2].Selected != "" {
		t.Fatalf("skipped row should carry no selection, got %q", rows[2].Selected)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleAnswers())
	if s.Score != 1 || s.Total != 3 {
		t.Fatalf("expected 1/3, got %d/%d", s.Score, s.Total)
	}
	if empty := Summarize(nil); empty.Score != 0 || empty.Total != 0 {
		t.Fatalf("expected empty summary, got %+v", empty)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleAnswers()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "question,selected,correct,is_correct" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[3] != "Striped animal?,,Zebra,false" {
		t.Fatalf("unexpected skipped row %q", lines[3])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleAnswers()); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[1][0] != "Red planet?" || rows[1][3] != "true" {
		t.Fatalf("unexpected first result row %v", rows[1])
	}
}
