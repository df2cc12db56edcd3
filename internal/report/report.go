package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fun-quiz/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Summary is the score line of a run.
type Summary struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Summarize counts correct answers against the number of recorded answers.
func Summarize(answers []domain.AnswerRecord) Summary {
	s := Summary{Total: len(answers)}
	for _, a := range answers {
		if a.IsCorrect {
			s.Score++
		}
	}
	return s
}

// BuildReport projects answer records into review rows.
func BuildReport(answers []domain.AnswerRecord) []domain.ReportRow {
	rows := make([]domain.ReportRow, 0, len(answers))
	for _, a := range answers {
		row := domain.ReportRow{
			Question: a.Question,
			Correct:  a.Correct,
		}
		switch {
		case a.Skipped():
			row.Outcome = domain.OutcomeSkipped
		case a.IsCorrect:
			row.Outcome = domain.OutcomeCorrect
			row.Selected = *a.Selected
		default:
			row.Outcome = domain.OutcomeIncorrect
			row.Selected = *a.Selected
		}
		rows = append(rows, row)
	}
	return rows
}

var exportHeader = []string{"question", "selected", "correct", "is_correct"}

func exportRow(a domain.AnswerRecord) []string {
	selected := ""
	if a.Selected != nil {
		selected = *a.Selected
	}
	return []string{a.Question, selected, a.Correct, strconv.FormatBool(a.IsCorrect)}
}

// WriteCSV writes the answer records with a header row.
func WriteCSV(w io.Writer, answers []domain.AnswerRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, a := range answers {
		if err := cw.Write(exportRow(a)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SheetName is the worksheet holding exported results.
const SheetName = "Results"

// WriteXLSX writes the same columns as WriteCSV into a spreadsheet.
func WriteXLSX(w io.Writer, answers []domain.AnswerRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	for i, a := range append([][]string{exportHeader}, exportRows(answers)...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(a))
		for j, v := range a {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func exportRows(answers []domain.AnswerRecord) [][]string {
	rows := make([][]string, 0, len(answers))
	for _, a := range answers {
		rows = append(rows, exportRow(a))
	}
	return rows
}
