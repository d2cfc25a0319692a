package validation

import (
	"errors"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
)

// Errors maps a field name to its human-readable messages.
type Errors map[string][]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range slices.Sorted(maps.Keys(e)) {
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) add(field, msg string) {
	if slices.Contains(e[field], msg) {
		return
	}
	e[field] = append(e[field], msg)
}

// CreateTodo is a validated todo creation payload.
type CreateTodo struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

type UpdateTodo struct {
	Title       string        `json:"title" validate:"required,max=255"`
	Description string        `json:"description" validate:"max=2000"`
	Status      domain.Status `json:"status" validate:"required,oneof=pending completed"`
}

// Register is a validated registration payload.
type Register struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// WebVital is one browser performance sample as sent by the web UI.
type WebVital struct {
	Name           string  `json:"name" validate:"required,oneof=CLS FCP FID INP LCP TTFB"`
	Value          float64 `json:"value" validate:"gte=0"`
	Rating         string  `json:"rating" validate:"omitempty,oneof=good needs-improvement poor"`
	Delta          float64 `json:"delta"`
	ID             string  `json:"id" validate:"max=128"`
	NavigationType string  `json:"navigationType" validate:"max=64"`
}

// messages is keyed by "<field>.<tag>", or "<Struct>.<field>.<tag>" where a
// field name means different things in different payloads.
var messages = map[string]string{
	"title.required":    "Title is required.",
	"title.max":         "Title must be at most 255 characters.",
	"description.max":   "Description must be at most 2000 characters.",
	"status.required":   "Please select a status.",
	"status.oneof":      "Please select a status.",
	"name.required":     "Name must be at least 2 characters.",
	"name.min":          "Name must be at least 2 characters.",
	"email.required":    "Please enter a valid email.",
	"email.email":       "Please enter a valid email.",
	"password.required": "Password must be at least 6 characters.",
	"password.min":      "Password must be at least 6 characters.",

	"WebVital.name.required": "Unknown metric name.",
	"WebVital.name.oneof":    "Unknown metric name.",
	"value.gte":              "Value must not be negative.",
	"rating.oneof":           "Unknown rating.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{"_": {"Invalid input."}}
	}

	out := Errors{}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Namespace()+"."+fe.Tag()]
		if !ok {
			msg, ok = messages[fe.Field()+"."+fe.Tag()]
		}
		if !ok {
			msg = "Invalid value."
		}
		out.add(fe.Field(), msg)
	}
	return out
}

// ValidateCreateTodo trims the title and returns the normalized input or Errors.
func ValidateCreateTodo(title, description string) (CreateTodo, error) {
	in := CreateTodo{
		Title:       strings.TrimSpace(title),
		Description: description,
	}
	if err := check(in); err != nil {
		return CreateTodo{}, err
	}
	return in, nil
}

// ValidateUpdateTodo trims and validates an update payload.
func ValidateUpdateTodo(title, description, status string) (UpdateTodo, error) {
	in := UpdateTodo{
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      domain.Status(status),
	}
	if err := check(in); err != nil {
		return UpdateTodo{}, err
	}
	return in, nil
}

// ValidateRegister trims and validates a registration payload.
func ValidateRegister(name, email, password string) (Register, error) {
	in := Register{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := check(in); err != nil {
		return Register{}, err
	}
	return in, nil
}

// InvalidType reports a field whose wire value had the wrong type. It carries
// the same message as a missing value.
func InvalidType(field string) Errors {
	msg, ok := messages[field+".required"]
	if !ok {
		msg = "Invalid value."
	}
	return Errors{field: {msg}}
}

// AsErrors extracts field errors from err.
func AsErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// ValidateWebVital checks a web vitals sample. Names are limited to the
// standard metrics so they stay usable as metric labels.
func ValidateWebVital(v WebVital) (WebVital, error) {
	v.Name = strings.TrimSpace(v.Name)
	if err := check(v); err != nil {
		return WebVital{}, err
	}
	return v, nil
}
