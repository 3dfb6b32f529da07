// Package validation checks user drafts and generated insights.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/brk3/habitflow/pkg/habit"
)

var (
	errRequired     = errors.New("is required")
	errTooLong      = errors.New("is too long")
	errBadClock     = errors.New("must be a 24-hour HH:mm time")
	errBadFrequency = errors.New("must be daily or weekly")
	errBadColor     = errors.New("must be a hex colour such as #4f46e5")
	errNoTips       = errors.New("must contain at least one tip")
)

var customErrors = map[string]error{
	"Draft.Name.required":                     errRequired,
	"Draft.Name.max":                          errTooLong,
	"Draft.Description.max":                   errTooLong,
	"Draft.ReminderTime.clock":                errBadClock,
	"Draft.Frequency.oneof":                   errBadFrequency,
	"Draft.Color.hexcolor":                    errBadColor,
	"AISuggestion.IdentityStatement.required": errRequired,
	"AISuggestion.Motivation.required":        errRequired,
	"AISuggestion.Tips.min":                   errNoTips,
}

var (
	once     sync.Once
	validate *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		err := validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			return habit.ValidReminderTime(fl.Field().String())
		})
		if err != nil {
			panic(fmt.Sprintf("register clock validation: %v", err))
		}
	})
	return validate
}

// Draft validates a habit draft as submitted by a user. Surrounding
// whitespace in the name does not count.
func Draft(d habit.Draft) error {
	d.Name = strings.TrimSpace(d.Name)
	return get().Struct(d)
}

// Suggestion validates a generated insight.
func Suggestion(s habit.AISuggestion) error {
	tips := make([]string, len(s.Tips))
	for i := range s.Tips {
		tips[i] = strings.TrimSpace(s.Tips[i])
	}
	s.Tips = tips
	s.IdentityStatement = strings.TrimSpace(s.IdentityStatement)
	s.Motivation = strings.TrimSpace(s.Motivation)
	return get().Struct(s)
}

// Messages converts validation errors into field -> message pairs. Other
// errors are returned under the "error" key.
func Messages(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["error"] = err.Error()
		return out
	}
	for _, e := range verrs {
		key := e.StructNamespace() + "." + e.Tag()
		msg := fmt.Sprintf("%s is invalid", e.Field())
		if v, ok := customErrors[key]; ok {
			msg = v.Error()
		}
		out[jsonName(e.Field())] = msg
	}
	return out
}

// Summary joins Messages into one line.
func Summary(err error) string {
	msgs := Messages(err)
	parts := make([]string, 0, len(msgs))
	for field, msg := range msgs {
		if field == "error" {
			parts = append(parts, msg)
			continue
		}
		parts = append(parts, field+" "+msg)
	}
	return strings.Join(parts, "; ")
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
