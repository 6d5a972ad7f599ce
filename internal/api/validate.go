package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"condish/internal/services"
)

var validate = validator.New()

// maxBodyBytes bounds request bodies; images travel inline as base64.
const maxBodyBytes = 32 << 20

// Decode reads a JSON request body into v and validates it. An empty body is
// accepted for request types whose fields are all optional.
func Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return services.Wrap(services.ErrValidation, "api", "decode", "malformed request body", err)
	}
	return Validate(v)
}

// Validate checks v's validator tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
		return services.Wrap(services.ErrValidation, "api", "validate", strings.Join(parts, "; "), nil)
	}
	return services.Wrap(services.ErrValidation, "api", "validate", "invalid request", err)
}
