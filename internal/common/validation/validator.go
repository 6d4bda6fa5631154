// Package validation checks struct-tagged values with go-playground/validator
// and reports failures as AppErrors.
//
// Field names in messages come from the `env` tag, then the `json` tag, then
// the Go field name, so a configuration error names the variable to fix.
package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"webhook-guard/internal/common/errors"
)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Validator wraps a configured validator.Validate.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the service's custom tags registered:
//
//	notblank           string contains a non-space character
//	tcp_port           decimal number between 1 and 65535
//	positive_int       decimal number greater than 0
//	path_prefix        string starts and ends with '/'
//	positive_duration  time.ParseDuration succeeds with a value > 0
//	cron_schedule      five-field cron expression or @descriptor
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	val := &Validator{validate: v}
	val.mustRegister("notblank", func(s string) bool {
		return strings.TrimSpace(s) != ""
	})
	val.mustRegister("tcp_port", func(s string) bool {
		port, err := strconv.Atoi(s)
		return err == nil && port >= 1 && port <= 65535
	})
	val.mustRegister("positive_int", func(s string) bool {
		n, err := strconv.ParseInt(s, 10, 64)
		return err == nil && n > 0
	})
	val.mustRegister("path_prefix", func(s string) bool {
		return strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/")
	})
	val.mustRegister("positive_duration", func(s string) bool {
		d, err := time.ParseDuration(s)
		return err == nil && d > 0
	})
	val.mustRegister("cron_schedule", func(s string) bool {
		_, err := cron.ParseStandard(s)
		return err == nil
	})

	return val
}

// Register adds a string rule under tag. It replaces any existing rule
// with the same name.
func (v *Validator) Register(tag string, rule func(string) bool) error {
	return v.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return rule(fl.Field().String())
	})
}

// mustRegister is Register for the built-in tags, which are never empty.
func (v *Validator) mustRegister(tag string, rule func(string) bool) {
	if err := v.Register(tag, rule); err != nil {
		panic(err)
	}
}

// Fields validates s and returns every failed rule, or nil.
func (v *Validator) Fields(s interface{}) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "unknown", Tag: "error", Message: err.Error()}}
	}

	fields := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: formatFieldError(fe),
		})
	}
	return fields
}

// Struct validates a configuration struct and returns a config AppError
// listing every failed rule.
func (v *Validator) Struct(s interface{}) error {
	fields := v.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return errors.ConfigError(joinMessages(fields))
}

// Request validates a decoded request body. The returned error carries
// the failed rules as its "fields" context.
func (v *Validator) Request(s interface{}) *errors.AppError {
	fields := v.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return errors.ValidationError(joinMessages(fields)).WithContext("fields", fields)
}

func joinMessages(fields []FieldError) string {
	messages := make([]string, len(fields))
	for i, f := range fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

func formatFieldError(err validator.FieldError) string {
	switch err.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", err.Field())
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", err.Field(), err.Param())
	case "tcp_port":
		return fmt.Sprintf("%s must be a valid port number between 1 and 65535", err.Field())
	case "positive_int":
		return fmt.Sprintf("%s must be a positive number", err.Field())
	case "path_prefix":
		return fmt.Sprintf("%s must start and end with '/'", err.Field())
	case "positive_duration":
		return fmt.Sprintf("%s must be a positive duration (e.g., '24h', '90m')", err.Field())
	case "cron_schedule":
		return fmt.Sprintf("%s must be a cron schedule (e.g., '@every 1m', '*/5 * * * *')", err.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%s: unsupported value %q", err.Field(), fmt.Sprint(err.Value()))
	}
}
