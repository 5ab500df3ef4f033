// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Consistent response shapes also make life easier for API consumers —
// they always know what error responses look like.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a section, a list, an
// id…). Error responses always look like:
//
//	{ "status": "error", "error": "field number is required" }
//
// Validation failures additionally carry a per-field map so a form can
// attach each message to the offending input:
//
//	{ "status": "error",
//	  "error":  "Lab section number must be alphanumeric.",
//	  "fields": { "number": "Lab section number must be alphanumeric." } }
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Status string constants — use these instead of raw string literals so
// a typo is caught by the compiler rather than silently sending "eroor".
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// MsgNumberAlphanumeric is the exact field message for a lab-section
// number containing anything outside [A-Za-z0-9]. The wording is part
// of the API contract; do not reword it.
const MsgNumberAlphanumeric = "Lab section number must be alphanumeric."

// WriteJSON writes a JSON-encoded response with the given HTTP status
// code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// json.NewEncoder(w) streams directly into w, avoiding an
	// intermediate buffer. Encode() appends a trailing newline.
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
// Use this for unexpected errors (DB failures, decode errors, etc.)
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// FieldErrors builds an error Response from an explicit field→message
// map, for failures detected outside the validator (e.g. a course_id
// that references no existing course).
func FieldErrors(fields map[string]string) Response {
	messages := make([]string, 0, len(fields))
	for _, msg := range fields {
		messages = append(messages, msg)
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(messages, ", "),
		Fields: fields,
	}
}

// ValidationError converts validator.ValidationErrors into a Response
// carrying one message per failing field.
//
// Field names come from the json struct tags (see validation.New), so
// the keys in the Fields map match the keys the client submitted.
func ValidationError(errs validator.ValidationErrors) Response {
	fields := make(map[string]string, len(errs))
	messages := make([]string, 0, len(errs))

	for _, e := range errs {
		msg := fieldMessage(e)
		fields[e.Field()] = msg
		messages = append(messages, msg)
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(messages, ", "),
		Fields: fields,
	}
}

// fieldMessage renders one FieldError as a human-readable sentence.
func fieldMessage(e validator.FieldError) string {
	// The alphanumeric rule on the section number has contractual
	// wording; everything else uses generic per-tag phrasing.
	if e.Field() == "number" && e.ActualTag() == "alphanum" {
		return MsgNumberAlphanumeric
	}

	switch e.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is required", e.Field())
	case "email":
		return fmt.Sprintf("field %s must be a valid email address", e.Field())
	case "max":
		return fmt.Sprintf("field %s must be at most %s characters", e.Field(), e.Param())
	case "alphanum":
		return fmt.Sprintf("field %s must be alphanumeric", e.Field())
	default:
		return fmt.Sprintf("field %s is invalid", e.Field())
	}
}
