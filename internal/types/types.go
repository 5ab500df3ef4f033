// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and admin can all import types without depending
// on each other.
package types

import "fmt"

// RoleTA is the role string that marks a user as a teaching assistant.
// Only users with this role are offered for lab-section assignment.
const RoleTA = "TA"

// Course is a collaborator entity: every lab section references exactly
// one course, but course management itself lives outside this module.
type Course struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"  validate:"required"`
	Title string `json:"title" validate:"required"`
	Year  int    `json:"year"  validate:"required"`
}

// User is a collaborator entity. TAs are users with Role == RoleTA.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"required"`
}

// LabSection is the central entity of this module: a scheduled
// sub-group of a course, led by zero or more TAs.
//
// Read payloads embed the full Course and the TA list so clients never
// need a second round trip to render a section.
type LabSection struct {
	ID       int64  `json:"id"`
	Course   Course `json:"course"`
	Number   string `json:"number"`
	Schedule string `json:"schedule"`
	TAs      []User `json:"tas"`
}

// String renders the canonical human-readable form of a lab section,
// e.g. "CS101 - Lab 001 (MWF 10-11)".
func (l LabSection) String() string {
	return fmt.Sprintf("%s - Lab %s (%s)", l.Course.Code, l.Number, l.Schedule)
}

// LabSectionInput is the write-side payload for create and update.
//
// Struct tags serve two purposes:
//
//  1. json:"..." — controls how the field is decoded from the request
//     body (snake_case keys match REST API conventions).
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. The section number must be non-empty, purely
//     alphanumeric, and at most 10 characters; the schedule is free
//     text capped at 50 characters.
type LabSectionInput struct {
	CourseID int64   `json:"course_id" validate:"required"`
	Number   string  `json:"number"    validate:"required,alphanum,max=10"`
	Schedule string  `json:"schedule"  validate:"max=50"`
	TAIDs    []int64 `json:"ta_ids"`
}
