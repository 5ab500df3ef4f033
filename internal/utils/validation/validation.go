// Package validation constructs the shared validator instance used by
// every handler package.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports field names from json struct
// tags rather than Go field names, so error messages and the per-field
// error map speak the client's vocabulary ("course_id", not "CourseID").
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
