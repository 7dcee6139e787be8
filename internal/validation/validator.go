// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one field that failed validation.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

// Error returns the human-readable message.
func (e FieldError) Error() string {
	return e.Message
}

// ValidationErrors is returned by ValidateStruct when one or more fields fail.
type ValidationErrors struct {
	errs []FieldError
}

// Errors returns the individual field errors.
func (ve *ValidationErrors) Errors() []FieldError {
	return ve.errs
}

// Fields returns the failing field names in order.
func (ve *ValidationErrors) Fields() []string {
	fields := make([]string, len(ve.errs))
	for i, e := range ve.errs {
		fields[i] = e.Field
	}
	return fields
}

// Error joins all field messages.
func (ve *ValidationErrors) Error() string {
	if len(ve.errs) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errs))
	for i, e := range ve.errs {
		messages[i] = e.Message
	}
	return strings.Join(messages, "; ")
}

// SinkFormats lists the result sink formats accepted by the sinkformat tag.
var SinkFormats = []string{"csv", "json", "duckdb"}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(koanfTagName)

		// Registration only fails on programmer error (empty tag or nil func).
		if err := validate.RegisterValidation("cutoffs", validateCutoffs); err != nil {
			panic(fmt.Sprintf("register cutoffs validator: %v", err))
		}
		if err := validate.RegisterValidation("sinkformat", validateSinkFormat); err != nil {
			panic(fmt.Sprintf("register sinkformat validator: %v", err))
		}
	})
	return validate
}

// ValidateStruct validates s and returns nil or a *ValidationErrors.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &ValidationErrors{errs: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		field := fieldPath(fe.Namespace())
		fieldErrors[i] = FieldError{
			Field:   field,
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: translateError(fe, field),
		}
	}
	return &ValidationErrors{errs: fieldErrors}
}

// koanfTagName names fields after their koanf key so messages match config files.
func koanfTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validateCutoffs(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice || field.Len() == 0 {
		return false
	}
	seen := make(map[int64]struct{}, field.Len())
	for i := 0; i < field.Len(); i++ {
		elem := field.Index(i)
		switch elem.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		default:
			return false
		}
		v := elem.Int()
		if v < 1 {
			return false
		}
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

func validateSinkFormat(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, f := range SinkFormats {
		if value == f {
			return true
		}
	}
	return false
}

var errorMessageTemplates = map[string]string{
	"required":   "%s is required",
	"cutoffs":    "%s must be a non-empty list of distinct cutoffs >= 1",
	"sinkformat": "%s must be one of: csv, json, duckdb",
	"dir":        "%s must be an existing directory",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translateError(fe validator.FieldError, field string) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		if fe.Kind() == reflect.Slice && (fe.Tag() == "min" || fe.Tag() == "max") {
			return fmt.Sprintf(template+" items", field, fe.Param())
		}
		return fmt.Sprintf(template, field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
