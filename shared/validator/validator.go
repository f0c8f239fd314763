// Package validator decodes request bodies and checks them against their
// validate tags. Failures come back as 400s naming the JSON field.
package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"slices"
	"strconv"
	"strings"
	"time"

	val "github.com/go-playground/validator/v10"
)

const megabyte = 1 << 20

var validate = newValidate()

var clockTimeLayouts = []string{constant.ClockTimeFormat, time.TimeOnly}

var rules = map[string]val.Func{
	"clocktime":   isClockTime,
	"date":        isDate,
	"mimetypes":   hasMimeType,
	"maxfilesize": fitsFileSize,
}

func newValidate() *val.Validate {
	v := val.New(val.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	return v
}

// fieldName reports fields by their json name, then form name, then Go name.
func fieldName(field reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(field.Tag.Get(key), ",")
		if name == "-" {
			return constant.Empty
		}

		if name != constant.Empty {
			return name
		}
	}

	return field.Name
}

// isClockTime accepts HH:MM, HH:MM:SS and the end-of-day marker 24:00.
func isClockTime(field val.FieldLevel) bool {
	value := field.Field().String()
	if value == "24:00" || value == "24:00:00" {
		return true
	}

	for _, layout := range clockTimeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}

	return false
}

func isDate(field val.FieldLevel) bool {
	_, err := time.Parse(constant.DateOnlyFormat, field.Field().String())

	return err == nil
}

func fileHeader(field val.FieldLevel) (multipart.FileHeader, bool) {
	file, ok := field.Field().Interface().(multipart.FileHeader)

	return file, ok
}

// hasMimeType checks the part's declared Content-Type against a space
// separated list.
func hasMimeType(field val.FieldLevel) bool {
	file, ok := fileHeader(field)
	if !ok {
		return false
	}

	return slices.Contains(strings.Fields(field.Param()), file.Header.Get(constant.RequestHeaderContentType))
}

// fitsFileSize takes its limit in megabytes.
func fitsFileSize(field val.FieldLevel) bool {
	file, ok := fileHeader(field)
	if !ok {
		return false
	}

	limit, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	return file.Size <= int64(limit*megabyte)
}

// Validate decodes r as JSON into data and validates the result.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.New(http.StatusBadRequest, message(err))
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.New(http.StatusBadRequest, message(err))
	}

	return nil
}
