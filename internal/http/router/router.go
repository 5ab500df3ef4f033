// Package router builds the application's route table. It lives in its
// own package (rather than inline in main) so tests can exercise the
// exact routes the server registers.
package router

import (
	"net/http"

	"github.com/aanand-mishra/labsections-api/internal/admin"
	"github.com/aanand-mishra/labsections-api/internal/http/handlers/course"
	"github.com/aanand-mishra/labsections-api/internal/http/handlers/labsection"
	"github.com/aanand-mishra/labsections-api/internal/http/handlers/user"
	"github.com/aanand-mishra/labsections-api/internal/storage"
)

// New registers every route against the given storage and returns the
// mux. Handler factories run once here; the returned closures run on
// every request.
//
// Route table:
//
//	GET    /api/lab-sections          → lab_section_list
//	POST   /api/lab-sections          → lab_section_create
//	GET    /api/lab-sections/{id}     → lab_section_detail
//	PUT    /api/lab-sections/{id}     → lab_section_update
//	DELETE /api/lab-sections/{id}     → lab_section_delete
//	POST   /api/courses               → create a course (collaborator)
//	GET    /api/courses               → list courses (collaborator)
//	POST   /api/users                 → create a user (collaborator)
//	GET    /api/users/tas             → list the TA pool
//	GET    /api/admin/lab-sections    → static browse metadata
func New(store storage.Storage) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/lab-sections", labsection.GetList(store))
	mux.HandleFunc("POST /api/lab-sections", labsection.New(store))
	mux.HandleFunc("GET /api/lab-sections/{id}", labsection.GetByID(store))
	mux.HandleFunc("PUT /api/lab-sections/{id}", labsection.Update(store))
	mux.HandleFunc("DELETE /api/lab-sections/{id}", labsection.Delete(store))

	mux.HandleFunc("POST /api/courses", course.New(store))
	mux.HandleFunc("GET /api/courses", course.GetList(store))

	mux.HandleFunc("POST /api/users", user.New(store))
	mux.HandleFunc("GET /api/users/tas", user.GetTAs(store))

	mux.HandleFunc("GET /api/admin/lab-sections", admin.Handler())

	return mux
}
