package validate

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords must match")
	ErrTooLong          = errors.New("field too long")
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// maxbytes=N limits the encoded length; `max` counts runes.
	_ = val.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	return val
}

// Struct runs the `validate` tags on s. A failed `required` wins over
// `eqfield`, which wins over `maxbytes`.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	mismatch, tooLong := false, false
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return ErrMissingFields
		case "eqfield":
			mismatch = true
		case "maxbytes":
			tooLong = true
		}
	}
	if mismatch {
		return ErrPasswordMismatch
	}
	if tooLong {
		return ErrTooLong
	}
	return ErrMissingFields
}

// ID parses a positive integer resource id from a path segment.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
