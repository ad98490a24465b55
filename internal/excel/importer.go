package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/drtempus/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines where questions are read from
type ImportConfig struct {
	FilePath       string // Path to the CSV or Excel file
	QuestionColumn string // Header of the column with the question
	AnswerColumn   string // Header of the column with the expected answer
	SheetName      string // Name of the sheet to import (Excel only)
	Delimiter      rune   // Field delimiter (CSV only)
	Limit          int    // Maximum number of unique questions, 0 for no limit
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		FilePath:       "quiz_historico_7.csv",
		QuestionColumn: "pergunta",
		AnswerColumn:   "resposta_esperada",
		SheetName:      "Sheet1",
		Delimiter:      ';',
		Limit:          10,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	Questions      []models.Question
	TotalProcessed int
	Duplicates     int
	Skipped        int
	Errors         []string
}

// LoadQuestions reads questions from an Excel or CSV file. Rows are kept in file order,
// repeated questions are dropped and at most config.Limit questions are returned.
func LoadQuestions(config ImportConfig) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)

	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".xlsx" || ext == ".xlsm" {
		rows, err = readExcel(config)
	} else {
		rows, err = readCSV(config)
	}
	if err != nil {
		return nil, err
	}

	result, err := buildQuestions(rows, config)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", config.FilePath, err)
	}
	return result, nil
}

// readExcel returns every row of the configured sheet
func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV returns every record of a delimited text file
func readCSV(config ImportConfig) ([][]string, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = config.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildQuestions turns a header row plus data rows into unique questions
func buildQuestions(rows [][]string, config ImportConfig) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, errors.New("file is empty")
	}

	questionIdx, answerIdx, err := findColumns(rows[0], config.QuestionColumn, config.AnswerColumn)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Errors: make([]string, 0),
	}
	seen := make(map[string]bool)

	for i, row := range rows[1:] {
		if config.Limit > 0 && len(result.Questions) >= config.Limit {
			break
		}
		rowNum := i + 2
		result.TotalProcessed++

		text := cell(row, questionIdx)
		if text == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: question cannot be empty", rowNum))
			continue
		}
		if seen[text] {
			result.Duplicates++
			continue
		}
		seen[text] = true

		result.Questions = append(result.Questions, models.Question{
			Text:           text,
			ExpectedAnswer: cell(row, answerIdx),
		})
	}

	if len(result.Questions) == 0 {
		return nil, errors.New("no questions found")
	}
	return result, nil
}

// findColumns locates the question and answer columns in the header row
func findColumns(header []string, questionColumn, answerColumn string) (int, int, error) {
	questionIdx, answerIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, questionColumn):
			questionIdx = i
		case strings.EqualFold(name, answerColumn):
			answerIdx = i
		}
	}

	var missing []string
	if questionIdx < 0 {
		missing = append(missing, questionColumn)
	}
	if answerIdx < 0 {
		missing = append(missing, answerColumn)
	}
	if len(missing) > 0 {
		return 0, 0, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return questionIdx, answerIdx, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
