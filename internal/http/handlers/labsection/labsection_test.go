package labsection_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/labsections-api/internal/config"
	"github.com/aanand-mishra/labsections-api/internal/http/router"
	"github.com/aanand-mishra/labsections-api/internal/storage/sqlite"
	"github.com/aanand-mishra/labsections-api/internal/types"
	"github.com/aanand-mishra/labsections-api/internal/utils/response"
)

// testEnv drives requests through the real route table against a real
// (temp-file) SQLite database, so these tests cover routing, handlers,
// validation, and storage together.
type testEnv struct {
	t     *testing.T
	mux   *http.ServeMux
	store *sqlite.SQLite
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Env:         "dev",
		StoragePath: filepath.Join(t.TempDir(), "test.db"),
	}

	store, err := sqlite.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Db.Close() })

	return &testEnv{t: t, mux: router.New(store), store: store}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

// seed inserts the canonical course/TA fixtures and one section,
// returning (courseID, taID, sectionID).
func (e *testEnv) seed() (int64, int64, int64) {
	e.t.Helper()

	courseID, err := e.store.CreateCourse("CS101", "Intro to CS", 2023)
	require.NoError(e.t, err)

	taID, err := e.store.CreateUser("ta@example.com", types.RoleTA)
	require.NoError(e.t, err)

	sectionID, err := e.store.CreateLabSection(types.LabSectionInput{
		CourseID: courseID,
		Number:   "001",
		Schedule: "MWF 10-11",
	})
	require.NoError(e.t, err)

	return courseID, taID, sectionID
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestListLabSections(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	rec := env.do(http.MethodGet, "/api/lab-sections", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sections []types.LabSection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sections))
	require.Len(t, sections, 1)
	assert.Equal(t, "001", sections[0].Number)
	assert.Equal(t, "CS101", sections[0].Course.Code)
}

func TestListLabSectionsEmptyReturnsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/lab-sections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestCreateLabSection(t *testing.T) {
	env := newTestEnv(t)
	courseID, taID, _ := env.seed()

	rec := env.do(http.MethodPost, "/api/lab-sections", map[string]any{
		"course_id": courseID,
		"number":    "002",
		"schedule":  "TTh 9-10",
		"ta_ids":    []int64{taID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Round trip: the detail read returns exactly what was written.
	rec = env.do(http.MethodGet, fmt.Sprintf("/api/lab-sections/%d", created["id"]), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var section types.LabSection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &section))
	assert.Equal(t, "002", section.Number)
	assert.Equal(t, "TTh 9-10", section.Schedule)
	assert.Equal(t, courseID, section.Course.ID)
	require.Len(t, section.TAs, 1)
	assert.Equal(t, "ta@example.com", section.TAs[0].Email)
}

func TestCreateLabSectionNumberNotAlphanumeric(t *testing.T) {
	env := newTestEnv(t)
	courseID, taID, _ := env.seed()

	for _, number := range []string{"001!", "0 01", "lab-1", "№1"} {
		rec := env.do(http.MethodPost, "/api/lab-sections", map[string]any{
			"course_id": courseID,
			"number":    number,
			"schedule":  "MWF 10-11",
			"ta_ids":    []int64{taID},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code, "number %q", number)

		resp := decodeError(t, rec)
		assert.Equal(t, response.StatusError, resp.Status)
		assert.Equal(t, "Lab section number must be alphanumeric.",
			resp.Fields["number"], "number %q", number)
	}
}

func TestCreateLabSectionNumberTooLong(t *testing.T) {
	env := newTestEnv(t)
	courseID, _, _ := env.seed()

	rec := env.do(http.MethodPost, "/api/lab-sections", map[string]any{
		"course_id": courseID,
		"number":    "12345678901", // 11 chars, limit is 10
		"schedule":  "MWF 10-11",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Contains(t, resp.Fields, "number")
}

func TestCreateLabSectionScheduleTooLong(t *testing.T) {
	env := newTestEnv(t)
	courseID, _, _ := env.seed()

	rec := env.do(http.MethodPost, "/api/lab-sections", map[string]any{
		"course_id": courseID,
		"number":    "001",
		"schedule":  strings.Repeat("x", 51), // limit is 50
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Contains(t, resp.Fields, "schedule")
}

func TestCreateLabSectionMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/lab-sections", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Contains(t, resp.Fields, "course_id")
	assert.Contains(t, resp.Fields, "number")
}

func TestCreateLabSectionUnknownCourse(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/lab-sections", map[string]any{
		"course_id": 42,
		"number":    "001",
		"schedule":  "MWF 10-11",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Contains(t, resp.Fields, "course_id")
}

func TestCreateLabSectionRejectsNonTA(t *testing.T) {
	env := newTestEnv(t)
	courseID, _, _ := env.seed()

	profID, err := env.store.CreateUser("prof@example.com", "Supervisor")
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/api/lab-sections", map[string]any{
		"course_id": courseID,
		"number":    "002",
		"schedule":  "TTh 9-10",
		"ta_ids":    []int64{profID},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Contains(t, resp.Fields, "ta_ids")
}

func TestCreateLabSectionRejectsUnknownTA(t *testing.T) {
	env := newTestEnv(t)
	courseID, _, _ := env.seed()

	rec := env.do(http.MethodPost, "/api/lab-sections", map[string]any{
		"course_id": courseID,
		"number":    "002",
		"schedule":  "TTh 9-10",
		"ta_ids":    []int64{999},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Contains(t, resp.Fields, "ta_ids")
}

func TestGetLabSectionDetail(t *testing.T) {
	env := newTestEnv(t)
	_, _, sectionID := env.seed()

	rec := env.do(http.MethodGet, fmt.Sprintf("/api/lab-sections/%d", sectionID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var section types.LabSection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &section))
	assert.Equal(t, sectionID, section.ID)
	assert.Equal(t, "001", section.Number)
}

func TestGetLabSectionDetailNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	rec := env.do(http.MethodGet, "/api/lab-sections/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLabSectionDetailBadID(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	rec := env.do(http.MethodGet, "/api/lab-sections/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateLabSection(t *testing.T) {
	env := newTestEnv(t)
	courseID, taID, sectionID := env.seed()

	rec := env.do(http.MethodPut, fmt.Sprintf("/api/lab-sections/%d", sectionID),
		map[string]any{
			"course_id": courseID,
			"number":    "001A",
			"schedule":  "MWF 11-12",
			"ta_ids":    []int64{taID},
		})
	require.Equal(t, http.StatusOK, rec.Code)

	var section types.LabSection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &section))
	assert.Equal(t, "001A", section.Number)
	assert.Equal(t, "MWF 11-12", section.Schedule)
	require.Len(t, section.TAs, 1)
	assert.Equal(t, "ta@example.com", section.TAs[0].Email)
}

func TestUpdateLabSectionRevalidatesNumber(t *testing.T) {
	env := newTestEnv(t)
	courseID, _, sectionID := env.seed()

	rec := env.do(http.MethodPut, fmt.Sprintf("/api/lab-sections/%d", sectionID),
		map[string]any{
			"course_id": courseID,
			"number":    "001!",
			"schedule":  "MWF 10-11",
		})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, "Lab section number must be alphanumeric.", resp.Fields["number"])
}

func TestUpdateLabSectionNotFound(t *testing.T) {
	env := newTestEnv(t)
	courseID, _, _ := env.seed()

	rec := env.do(http.MethodPut, "/api/lab-sections/999", map[string]any{
		"course_id": courseID,
		"number":    "001",
		"schedule":  "MWF 10-11",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteLabSection(t *testing.T) {
	env := newTestEnv(t)
	_, _, sectionID := env.seed()

	rec := env.do(http.MethodDelete, fmt.Sprintf("/api/lab-sections/%d", sectionID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, fmt.Sprintf("/api/lab-sections/%d", sectionID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteLabSectionNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	rec := env.do(http.MethodDelete, "/api/lab-sections/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmptyBodyRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/lab-sections", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, "request body is empty", resp.Error)
}
