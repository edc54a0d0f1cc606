package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/SAP-F-2025/assessment-session/internal/session"
	"github.com/xuri/excelize/v2"
)

// Import sheet columns, matched case-insensitively against the header row
const (
	columnType      = "type"
	columnPrompt    = "prompt"
	columnOptions   = "options"
	columnCorrect   = "correct"
	columnReference = "reference"

	listSeparator = "|"
)

// ===== IMPORT OPERATIONS =====

// ImportFromExcel builds an assessment from the first sheet of an xlsx file.
// Rows that fail to parse are reported and skipped; the valid rows are stored
// in sheet order.
func (s *assessmentService) ImportFromExcel(ctx context.Context, reader io.Reader, req *ImportAssessmentRequest, creatorID string) (*ImportResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, NewValidationError("file", "not a valid xlsx file", nil)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "Excel must have header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{columnType, columnPrompt} {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &ImportResult{Errors: make([]ImportRowError, 0)}
	inputs := make([]QuestionInput, 0, len(rows)-1)
	questions := make([]session.Question, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}
		result.TotalRows++

		input, rowErr := parseQuestionRow(row, headerMap, rowNum)
		if rowErr == nil {
			var q session.Question
			q, rowErr = s.checkQuestion(input, rowNum, len(questions)+1)
			if rowErr == nil {
				inputs = append(inputs, input)
				questions = append(questions, q)
				result.SuccessCount++
				continue
			}
		}
		result.Errors = append(result.Errors, *rowErr)
		result.ErrorCount++
	}

	if len(inputs) == 0 {
		s.logger.Warn("Excel import produced no questions", "rows", result.TotalRows, "errors", result.ErrorCount)
		return result, NewBusinessRuleError("import_has_questions", "no valid question rows in file", map[string]interface{}{
			"total_rows":  result.TotalRows,
			"error_count": result.ErrorCount,
		})
	}

	assessment, err := buildAssessment(req.Title, nil, req.DurationSeconds, creatorID, inputs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Assessment().Create(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to save imported assessment: %w", err)
	}
	result.Assessment = buildAssessmentResponse(assessment, questions)

	s.logger.Info("Excel import completed",
		"assessment_id", assessment.ID,
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)

	return result, nil
}

// checkQuestion applies the same rules as Create to one parsed row
func (s *assessmentService) checkQuestion(input QuestionInput, rowNum, id int) (session.Question, *ImportRowError) {
	if err := s.validator.Validate(&input); err != nil {
		return nil, &ImportRowError{Row: rowNum, Field: columnType, Message: err.Error()}
	}
	q, err := input.toSession(id)
	if err != nil {
		return nil, &ImportRowError{Row: rowNum, Field: columnCorrect, Message: err.Error()}
	}
	if err := s.validator.Question().ValidateQuestion(q); err != nil {
		return nil, &ImportRowError{Row: rowNum, Field: columnOptions, Message: err.Error()}
	}
	return q, nil
}

// parseQuestionRow reads one sheet row. Options are "text|text|...", given the
// ids A, B, C... in order; correct lists those ids, or true/false.
func parseQuestionRow(row []string, headerMap map[string]int, rowNum int) (QuestionInput, *ImportRowError) {
	input := QuestionInput{
		Kind:   strings.ToLower(cell(row, headerMap, columnType)),
		Prompt: cell(row, headerMap, columnPrompt),
	}

	if _, err := session.ParseKind(input.Kind); err != nil {
		return input, &ImportRowError{Row: rowNum, Field: columnType, Message: fmt.Sprintf("unknown question type %q", input.Kind)}
	}
	if input.Prompt == "" {
		return input, &ImportRowError{Row: rowNum, Field: columnPrompt, Message: "prompt is required"}
	}

	if raw := cell(row, headerMap, columnOptions); raw != "" {
		for i, text := range splitList(raw) {
			input.Options = append(input.Options, session.Option{ID: optionID(i), Text: text})
		}
	}

	correct := splitList(cell(row, headerMap, columnCorrect))
	switch session.Kind(input.Kind) {
	case session.KindTrueFalse:
		for i := range correct {
			correct[i] = strings.ToLower(correct[i])
		}
	case session.KindMultipleChoice:
		for i := range correct {
			correct[i] = strings.ToUpper(correct[i])
		}
	}
	input.Correct = correct

	if ref := cell(row, headerMap, columnReference); ref != "" {
		input.Reference = &ref
	}
	return input, nil
}

func cell(row []string, headerMap map[string]int, column string) string {
	idx, ok := headerMap[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// optionID maps 0, 1, 2... to A, B, C...
func optionID(i int) string {
	return string(rune('A' + i))
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
