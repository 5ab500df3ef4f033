// Package course exposes the minimal collaborator endpoints for the
// Course entity: enough to create and list the courses that lab
// sections reference. Course business logic beyond that lives outside
// this module.
package course

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/labsections-api/internal/storage"
	"github.com/aanand-mishra/labsections-api/internal/types"
	"github.com/aanand-mishra/labsections-api/internal/utils/response"
	"github.com/aanand-mishra/labsections-api/internal/utils/validation"
)

var validate = validation.New()

// New handles POST /api/courses. Returns 201 with the new course id.
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a course")

		var course types.Course

		err := json.NewDecoder(r.Body).Decode(&course)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validate.Struct(course); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		lastID, err := storage.CreateCourse(course.Code, course.Title, course.Year)
		if err != nil {
			slog.Error("error creating course", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("course created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": lastID})
	}
}

// GetList handles GET /api/courses. Returns [] when there are none.
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all courses")

		courses, err := storage.GetCourses()
		if err != nil {
			slog.Error("error getting courses", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, courses)
	}
}
