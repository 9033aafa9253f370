package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError lists the failing fields of a request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, tag := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s failed on %s", f, tag))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(errs))}
	for _, fe := range errs {
		out.Fields[fe.Field()] = fe.Tag()
	}
	return out
}
