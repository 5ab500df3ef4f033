// Package labsection contains all HTTP handlers for the lab-section
// resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database.
// Each exported function here is a factory: it accepts dependencies
// (storage), runs ONCE at route-registration time, and returns the
// actual per-request handler which closes over those dependencies.
package labsection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/labsections-api/internal/storage"
	"github.com/aanand-mishra/labsections-api/internal/types"
	"github.com/aanand-mishra/labsections-api/internal/utils/response"
	"github.com/aanand-mishra/labsections-api/internal/utils/validation"
)

// One validator for the package: it is safe for concurrent use and
// caches struct metadata between requests.
var validate = validation.New()

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/lab-sections
// Creates a lab section from the JSON request body.
//
// Request body (JSON):
//
//	{ "course_id": 1, "number": "001", "schedule": "MWF 10-11", "ta_ids": [2] }
//
// Success response (201 Created):
//
//	{ "id": 1 }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, failed validation,
//	                   or course_id referencing no course
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a lab section")

		input, ok := decodeAndValidate(w, r)
		if !ok {
			return
		}

		if !courseExists(w, store, input.CourseID) || !tasAssignable(w, store, input.TAIDs) {
			return
		}

		lastID, err := store.CreateLabSection(input)
		if err != nil {
			slog.Error("error creating lab section", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("lab section created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": lastID})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/lab-sections
// Returns a JSON array of all lab sections, each with its course and
// TA set embedded. Returns an empty array [] (not null) when there are
// no sections.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all lab sections")

		sections, err := store.GetLabSections()
		if err != nil {
			slog.Error("error getting lab sections", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, sections)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/lab-sections/{id}
// Fetches a single lab section by primary key.
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no section with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a lab section", slog.String("id", id))

		intID, ok := parseID(w, id)
		if !ok {
			return
		}

		section, err := store.GetLabSectionByID(intID)
		if err != nil {
			writeLookupError(w, "getting", id, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, section)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/lab-sections/{id}
// Replaces ALL fields of an existing section, including its TA set.
// The number field is revalidated with the same rules as creation.
//
// Success response (200 OK) — the updated section.
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, or validation failure
//	404 Not Found    — no section with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a lab section", slog.String("id", id))

		intID, ok := parseID(w, id)
		if !ok {
			return
		}

		input, ok := decodeAndValidate(w, r)
		if !ok {
			return
		}

		if !courseExists(w, store, input.CourseID) || !tasAssignable(w, store, input.TAIDs) {
			return
		}

		updated, err := store.UpdateLabSectionByID(intID, input)
		if err != nil {
			writeLookupError(w, "updating", id, err)
			return
		}

		slog.Info("lab section updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/lab-sections/{id}
// Permanently removes a section; its TA assignments cascade.
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// Error responses:
//
//	400 Bad Request  — invalid id
//	404 Not Found    — no section with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a lab section", slog.String("id", id))

		intID, ok := parseID(w, id)
		if !ok {
			return
		}

		if err := store.DeleteLabSectionByID(intID); err != nil {
			writeLookupError(w, "deleting", id, err)
			return
		}

		slog.Info("lab section deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// parseID converts the {id} path segment to int64, answering 400 on a
// non-integer value. The boolean reports whether the caller may proceed.
func parseID(w http.ResponseWriter, id string) (int64, bool) {
	intID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return intID, true
}

// decodeAndValidate reads a LabSectionInput from the body and runs the
// struct validation rules, writing the appropriate 400 response itself
// on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request) (types.LabSectionInput, bool) {
	var input types.LabSectionInput

	err := json.NewDecoder(r.Body).Decode(&input)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return input, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return input, false
	}

	if err := validate.Struct(input); err != nil {
		validateErrs := err.(validator.ValidationErrors)
		response.WriteJSON(w, http.StatusBadRequest,
			response.ValidationError(validateErrs))
		return input, false
	}

	return input, true
}

// courseExists verifies the referenced course before a write, answering
// a field-level 400 when it is missing. Checking up front turns what
// would be an opaque foreign-key failure into a client-actionable error.
func courseExists(w http.ResponseWriter, store storage.Storage, courseID int64) bool {
	_, err := store.GetCourseByID(courseID)
	if errors.Is(err, storage.ErrNotFound) {
		response.WriteJSON(w, http.StatusBadRequest, response.FieldErrors(
			map[string]string{"course_id": "referenced course does not exist"}))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
		return false
	}
	return true
}

// tasAssignable verifies every requested TA id names an existing user
// with the TA role, mirroring the assignment form's restricted choice
// set. Answers a field-level 400 on the first offender.
func tasAssignable(w http.ResponseWriter, store storage.Storage, taIDs []int64) bool {
	for _, taID := range taIDs {
		user, err := store.GetUserByID(taID)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusBadRequest, response.FieldErrors(
				map[string]string{"ta_ids": fmt.Sprintf("user %d does not exist", taID)}))
			return false
		}
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return false
		}
		if user.Role != types.RoleTA {
			response.WriteJSON(w, http.StatusBadRequest, response.FieldErrors(
				map[string]string{"ta_ids": fmt.Sprintf("user %d is not a TA", taID)}))
			return false
		}
	}
	return true
}

// writeLookupError maps a storage error from an id-scoped operation to
// 404 (unknown id) or 500 (anything else).
func writeLookupError(w http.ResponseWriter, verb, id string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}
	slog.Error("error "+verb+" lab section",
		slog.String("id", id),
		slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
