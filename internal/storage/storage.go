// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// Handlers (HTTP layer) should not know or care which database they are
// talking to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB,
//     change one line in main.go. Zero handler changes.
//
//   - Writing tests = pass a fake that satisfies the interface.
//     No real database needed for unit tests.
package storage

import (
	"errors"

	"github.com/aanand-mishra/labsections-api/internal/types"
)

// ErrNotFound is returned when a lookup matches no record.
// Handlers translate it to a 404; every other storage error is a 500.
// Implementations must wrap it (or return it directly) so callers can
// test with errors.Is.
var ErrNotFound = errors.New("record not found")

// Storage is the database contract.
// Any concrete type that implements ALL of these methods automatically
// satisfies this interface — Go does this implicitly.
type Storage interface {
	// CreateCourse inserts a course and returns its generated ID.
	CreateCourse(code string, title string, year int) (int64, error)

	// GetCourseByID fetches one course, or ErrNotFound.
	GetCourseByID(id int64) (types.Course, error)

	// GetCourses returns every course. Empty slice (not nil) when none.
	GetCourses() ([]types.Course, error)

	// CreateUser inserts a user and returns its generated ID.
	CreateUser(email string, role string) (int64, error)

	// GetUserByID fetches one user, or ErrNotFound.
	GetUserByID(id int64) (types.User, error)

	// GetUsersByRole returns every user with the given role.
	// Empty slice (not nil) when none.
	GetUsersByRole(role string) ([]types.User, error)

	// CreateLabSection inserts a lab section (and its initial TA set)
	// and returns the generated ID. The referenced course must exist.
	CreateLabSection(input types.LabSectionInput) (int64, error)

	// GetLabSectionByID fetches one lab section with its course and TA
	// set embedded, or ErrNotFound.
	GetLabSectionByID(id int64) (types.LabSection, error)

	// GetLabSections returns every lab section with course and TAs
	// embedded. Empty slice (not nil) when none.
	GetLabSections() ([]types.LabSection, error)

	// UpdateLabSectionByID replaces the fields of an existing section
	// and its entire TA set, then returns the updated record.
	// Returns ErrNotFound if the id matches nothing.
	UpdateLabSectionByID(id int64, input types.LabSectionInput) (types.LabSection, error)

	// DeleteLabSectionByID removes a section permanently (join-table
	// rows cascade). Returns ErrNotFound if the id matches nothing.
	DeleteLabSectionByID(id int64) error

	// AssignTA adds a user to a section's TA set. Assigning the same
	// user twice is a no-op: the TA relationship has set semantics.
	AssignTA(sectionID int64, userID int64) error
}
