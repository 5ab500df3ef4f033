// Package user exposes the minimal collaborator endpoints for the User
// entity: creating users and listing the TA pool that lab-section
// forms choose from. Authentication and the rest of user management
// live outside this module.
package user

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

// New handles POST /api/users. Returns 201 with the new user id.
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a user")

		var user types.User

		err := json.NewDecoder(r.Body).Decode(&user)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validate.Struct(user); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		lastID, err := storage.CreateUser(user.Email, user.Role)
		if err != nil {
			slog.Error("error creating user", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("user created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": lastID})
	}
}

// GetTAs handles GET /api/users/tas — the pool of users eligible for
// lab-section assignment (role "TA"). Returns [] when there are none.
func GetTAs(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all TAs")

		tas, err := storage.GetUsersByRole(types.RoleTA)
		if err != nil {
			slog.Error("error getting TAs", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, tas)
	}
}
