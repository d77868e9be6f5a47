package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator and reports errors by JSON field
// name.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Struct returns a *ValidationError for rule violations and nil otherwise.
func (v *Validator) Struct(s any) *ValidationError {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return &ValidationError{Fields: map[string]string{"_": err.Error()}}
	}
	return newValidationError(errs)
}

type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func newValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "email":
			fields[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "url":
			fields[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "min":
			if fe.Kind() == reflect.String {
				fields[field] = fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
			} else {
				fields[field] = fmt.Sprintf("%s must be at least %s", field, fe.Param())
			}
		case "max":
			if fe.Kind() == reflect.String {
				fields[field] = fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
			} else {
				fields[field] = fmt.Sprintf("%s must be at most %s", field, fe.Param())
			}
		case "gte":
			fields[field] = fmt.Sprintf("%s must be %s or more", field, fe.Param())
		case "lte":
			fields[field] = fmt.Sprintf("%s must be %s or less", field, fe.Param())
		default:
			fields[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return &ValidationError{Fields: fields}
}
