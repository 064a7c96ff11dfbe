package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"quizcore/config"
	"quizcore/database"
	"quizcore/models"
	"quizcore/services/quizstore"
	"quizcore/validators"
)

// Imports a question bank CSV as draft quizzes. Rows sharing a quiz_title
// become one quiz. Columns:
//
//	quiz_title, subject, class, quiz_type, question_type, question,
//	question_hi, question_pa, option_a..option_d, correct, points, explanation
//
// correct is an option letter for choice questions and the expected text for
// fill_blank questions.
func main() {
	path := "QuestionBank.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	owner := os.Getenv("IMPORT_OWNER_ID")
	if owner == "" {
		log.Fatal("IMPORT_OWNER_ID must name the teacher or admin who will own the quizzes")
	}

	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	definitions, err := parseQuestionBank(file)
	if err != nil {
		log.Fatalf("Failed to read question bank: %v", err)
	}
	log.Printf("Quizzes to import: %d", len(definitions))

	store := quizstore.NewStore(database.Database.Db)
	inserted, skipped := 0, 0
	for _, def := range definitions {
		if err := validators.Validate.Struct(def); err != nil {
			log.Printf("Skipping quiz %q: %v", def.Title.En, validators.Errors(err))
			skipped++
			continue
		}
		quiz, err := store.Create(context.Background(), def, owner)
		if err != nil {
			log.Printf("Error inserting quiz %q: %v", def.Title.En, err)
			skipped++
			continue
		}
		log.Printf("Imported quiz %q as %s (%d questions)", def.Title.En, quiz.ID, len(quiz.Questions))
		inserted++
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Inserted: %d", inserted)
	log.Printf("Skipped: %d", skipped)
}

var optionColumns = []string{"option_a", "option_b", "option_c", "option_d"}

// parseQuestionBank groups CSV rows into quiz definitions in first seen order
func parseQuestionBank(r io.Reader) ([]quizstore.Definition, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var (
		order   []string
		byTitle = make(map[string]*quizstore.Definition)
	)
	for i, row := range records[1:] {
		title := getField(row, headerIndex, "quiz_title")
		if title == "" {
			log.Printf("Row %d has no quiz_title, skipping", i+2)
			continue
		}

		def, ok := byTitle[title]
		if !ok {
			def = &quizstore.Definition{
				Title:   models.Text(title),
				Subject: getField(row, headerIndex, "subject"),
				Class:   parseInt(getField(row, headerIndex, "class")),
				Type:    models.QuizType(strings.ToLower(getField(row, headerIndex, "quiz_type"))),
			}
			if def.Type == "" {
				def.Type = models.QuizTypePractice
			}
			byTitle[title] = def
			order = append(order, title)
		}
		def.Questions = append(def.Questions, parseQuestion(row, headerIndex))
	}

	out := make([]quizstore.Definition, 0, len(order))
	for _, title := range order {
		out = append(out, *byTitle[title])
	}
	return out, nil
}

func parseQuestion(row []string, headerIndex map[string]int) models.Question {
	q := models.Question{
		Type: models.QuestionType(strings.ToLower(getField(row, headerIndex, "question_type"))),
		Question: models.MultilingualText{
			En: getField(row, headerIndex, "question"),
			Hi: getField(row, headerIndex, "question_hi"),
			Pa: getField(row, headerIndex, "question_pa"),
		},
		Points: parseInt(getField(row, headerIndex, "points")),
	}
	if explanation := getField(row, headerIndex, "explanation"); explanation != "" {
		text := models.Text(explanation)
		q.Explanation = &text
	}

	correct := getField(row, headerIndex, "correct")
	if q.Type == models.QuestionFillBlank {
		answer := models.Text(correct)
		q.CorrectAnswer = &answer
		return q
	}

	correctLetter := strings.ToLower(correct)
	for i, column := range optionColumns {
		text := getField(row, headerIndex, column)
		if text == "" {
			continue
		}
		q.Options = append(q.Options, models.Option{
			Text:      models.Text(text),
			IsCorrect: correctLetter == string(rune('a'+i)),
		})
	}
	return q
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseInt converts string to int
func parseInt(s string) int {
	if s == "" {
		return 0
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return val
}
