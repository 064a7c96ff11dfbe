// Package validators holds the shared struct validator used by the request
// validators.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"quizcore/models"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct tags plus the question rules tags cannot express
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(questionValidation, models.Question{})
	return v
}

// questionValidation enforces the per type answer key shape
func questionValidation(sl validator.StructLevel) {
	q := sl.Current().Interface().(models.Question)

	if q.Points < 0 {
		sl.ReportError(q.Points, "points", "Points", "min", "0")
	}

	switch {
	case q.Type.IsChoice():
		if len(q.Options) < 2 {
			sl.ReportError(q.Options, "options", "Options", "min_options", "2")
			return
		}
		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
			if strings.TrimSpace(opt.Text.En) == "" && (q.Type != models.QuestionImageChoice || opt.ImageKey == "") {
				sl.ReportError(q.Options, "options", "Options", "option_label", "")
				return
			}
		}
		if correct == 0 {
			sl.ReportError(q.Options, "options", "Options", "correct_option", "")
		}
	case q.Type == models.QuestionFillBlank:
		if q.CorrectAnswer == nil || strings.TrimSpace(q.CorrectAnswer.En) == "" {
			sl.ReportError(q.CorrectAnswer, "correct_answer", "CorrectAnswer", "required", "")
		}
	default:
		sl.ReportError(q.Type, "type", "Type", "question_type", "")
	}
}

// Errors flattens a validation failure into field -> message, keyed by the
// JSON path of the offending field.
func Errors(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out[field] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required!"
	case "min":
		return fmt.Sprintf("Must be at least %s!", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s!", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s!", fe.Param())
	case "min_options":
		return "Choice questions need at least 2 options!"
	case "correct_option":
		return "At least one option must be marked correct!"
	case "option_label":
		return "Every option needs text or an image!"
	case "question_type":
		return "Unknown question type!"
	default:
		return fmt.Sprintf("Failed on %s!", fe.Tag())
	}
}
