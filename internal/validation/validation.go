package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/hyperengineering/portfolio/internal/types"
)

// Field limits for free-text idea fields.
const (
	MaxTitleLength = 200
	MaxTextLength  = 2000
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when local validation blocks an action before any
// network call. It carries every field failure found.
type Error struct {
	Fields []ValidationError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// Err returns an *Error when any failure was collected, nil otherwise.
func (c *Collector) Err() error {
	if !c.HasErrors() {
		return nil
	}
	return &Error{Fields: c.errors}
}

// ValidateUTF8 returns an error if the value is not valid UTF-8.
func ValidateUTF8(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{
			Field:   field,
			Message: "must be valid UTF-8",
		}
	}
	return nil
}

// ValidateNoNullBytes returns an error if the value contains null bytes.
func ValidateNoNullBytes(field, value string) *ValidationError {
	if strings.Contains(value, "\x00") {
		return &ValidationError{
			Field:   field,
			Message: "must not contain null bytes",
		}
	}
	return nil
}

// ValidateMaxLength returns an error if the value exceeds max runes.
func ValidateMaxLength(field, value string, max int) *ValidationError {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", max),
		}
	}
	return nil
}

// ValidateRequired returns an error if the value is empty or whitespace-only.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: "is required",
		}
	}
	return nil
}

// ValidateEnum returns an error if the value is not in the allowed list.
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateRange returns an error if the value is outside [min, max].
func ValidateRange(field string, value, min, max float64) *ValidationError {
	if value < min || value > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %.1f and %.1f", min, max),
		}
	}
	return nil
}

// ValidateEmail returns an error if the value is not a bare e-mail address.
func ValidateEmail(field, value string) *ValidationError {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return &ValidationError{
			Field:   field,
			Message: "must be a valid e-mail address",
		}
	}
	return nil
}

// ValidateStatus returns an error unless the status is empty or one of the
// four workflow states.
func ValidateStatus(field string, s types.Status) *ValidationError {
	if s == "" || s.Valid() {
		return nil
	}
	allowed := make([]string, 0, 4)
	for _, st := range types.Statuses() {
		allowed = append(allowed, string(st))
	}
	return ValidateEnum(field, string(s), allowed)
}

func text(c *Collector, field, value string, max int, required bool) {
	if required {
		if err := ValidateRequired(field, value); err != nil {
			c.Add(err)
			return
		}
	}
	c.Add(ValidateUTF8(field, value))
	c.Add(ValidateNoNullBytes(field, value))
	c.Add(ValidateMaxLength(field, value, max))
}

// ValidateNewIdea checks the fields a caller supplies when creating an idea.
func ValidateNewIdea(idea types.NewIdea) error {
	var c Collector
	text(&c, "service", idea.Service, MaxTitleLength, true)
	text(&c, "need", idea.Need, MaxTextLength, true)
	text(&c, "cluster", idea.Cluster, MaxTitleLength, true)
	text(&c, "businessModel", idea.BusinessModel, MaxTitleLength, true)
	text(&c, "targetAudience", idea.TargetAudience, MaxTextLength, false)
	text(&c, "creatorName", idea.CreatorName, MaxTitleLength, false)
	c.Add(ValidateStatus("status", idea.Status))
	return c.Err()
}

// ValidateIdea checks a full idea record before it is sent as an update.
func ValidateIdea(idea types.Idea) error {
	var c Collector
	if idea.ID <= 0 {
		c.Add(&ValidationError{Field: "id", Message: "must be a positive integer"})
	}
	text(&c, "service", idea.Service, MaxTitleLength, true)
	text(&c, "need", idea.Need, MaxTextLength, true)
	text(&c, "cluster", idea.Cluster, MaxTitleLength, true)
	text(&c, "businessModel", idea.BusinessModel, MaxTitleLength, true)
	text(&c, "targetAudience", idea.TargetAudience, MaxTextLength, false)
	c.Add(ValidateStatus("status", idea.Status))
	if idea.RevenueEstimate < 0 {
		c.Add(&ValidationError{Field: "revenueEstimate", Message: "must not be negative"})
	}
	if len(idea.Scores) != 0 && len(idea.Scores) != types.CriteriaCount {
		c.Add(&ValidationError{Field: "scores", Message: fmt.Sprintf("must have exactly %d entries", types.CriteriaCount)})
	}
	for i, s := range idea.Scores {
		c.Add(ValidateRange(fmt.Sprintf("scores[%d]", i), float64(s), 0, types.MaxScore))
	}
	return c.Err()
}

// ValidateLogin checks login credentials.
func ValidateLogin(email, password string) error {
	var c Collector
	if err := ValidateRequired("email", email); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateEmail("email", email))
	}
	c.Add(ValidateRequired("password", password))
	return c.Err()
}

// ValidateRegistration checks registration fields.
func ValidateRegistration(name, email, password string) error {
	var c Collector
	text(&c, "name", name, MaxTitleLength, true)
	if err := ValidateRequired("email", email); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateEmail("email", email))
	}
	c.Add(ValidateRequired("password", password))
	return c.Err()
}

// ValidateQuery checks a free-text question or idea prompt.
func ValidateQuery(field, value string) error {
	var c Collector
	text(&c, field, value, MaxTextLength, true)
	return c.Err()
}
