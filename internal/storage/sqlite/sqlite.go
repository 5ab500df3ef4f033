// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk: no network, no
// separate server process, and no installation beyond the driver —
// a good fit for a departmental tool of this size.
//
// The blank import below registers the sqlite3 driver with database/sql.
// The driver's init() function does this automatically when the package
// is loaded — we never call anything from it directly.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/aanand-mishra/labsections-api/internal/config"
	"github.com/aanand-mishra/labsections-api/internal/storage"
	"github.com/aanand-mishra/labsections-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql
// and safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// Interface guard: fails to compile if SQLite drifts from the contract.
var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath, creates the schema
// if it does not already exist, and returns a ready-to-use *SQLite.
//
// The schema models the TA relationship as an explicit join table with
// a composite primary key, which is what gives TA assignment its set
// semantics (a duplicate assignment cannot produce a second row).
func New(cfg *config.Config) (*SQLite, error) {
	// SQLite ships with foreign-key enforcement off; the schema below
	// relies on it for the course reference and the cascades. The DSN
	// parameter (rather than a PRAGMA) makes the driver apply it to
	// every connection in the database/sql pool.
	db, err := sql.Open("sqlite3", cfg.StoragePath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe on every startup.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS courses (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			code  TEXT    NOT NULL,
			title TEXT    NOT NULL,
			year  INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS users (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT    NOT NULL,
			role  TEXT    NOT NULL
		);
		CREATE TABLE IF NOT EXISTS lab_sections (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			course_id INTEGER NOT NULL
			          REFERENCES courses(id) ON DELETE CASCADE,
			number    TEXT    NOT NULL,
			schedule  TEXT    NOT NULL
		);
		CREATE TABLE IF NOT EXISTS lab_section_tas (
			lab_section_id INTEGER NOT NULL
			               REFERENCES lab_sections(id) ON DELETE CASCADE,
			user_id        INTEGER NOT NULL
			               REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (lab_section_id, user_id)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create schema: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses (collaborator entity)
// ─────────────────────────────────────────────────────────────────────────────

// CreateCourse inserts a new row into the courses table.
func (s *SQLite) CreateCourse(code, title string, year int) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO courses (code, title, year) VALUES (?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(code, title, year)
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: last insert id: %w", err)
	}

	return lastID, nil
}

// GetCourseByID fetches exactly one course row matched by primary key.
func (s *SQLite) GetCourseByID(id int64) (types.Course, error) {
	var course types.Course

	err := s.Db.QueryRow(
		"SELECT id, code, title, year FROM courses WHERE id = ? LIMIT 1", id,
	).Scan(&course.ID, &course.Code, &course.Title, &course.Year)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Course{}, fmt.Errorf("course id %d: %w", id, storage.ErrNotFound)
		}
		return types.Course{}, fmt.Errorf("GetCourseByID: scan: %w", err)
	}

	return course, nil
}

// GetCourses returns all course rows as a slice.
func (s *SQLite) GetCourses() ([]types.Course, error) {
	rows, err := s.Db.Query("SELECT id, code, title, year FROM courses")
	if err != nil {
		return nil, fmt.Errorf("GetCourses: query: %w", err)
	}
	defer rows.Close()

	// Pre-allocate an empty (non-nil) slice.
	// Returning [] instead of null in JSON is better API behaviour.
	courses := make([]types.Course, 0)

	for rows.Next() {
		var course types.Course
		if err := rows.Scan(&course.ID, &course.Code, &course.Title, &course.Year); err != nil {
			return nil, fmt.Errorf("GetCourses: scan row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetCourses: rows iteration: %w", err)
	}

	return courses, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Users (collaborator entity)
// ─────────────────────────────────────────────────────────────────────────────

// CreateUser inserts a new row into the users table.
func (s *SQLite) CreateUser(email, role string) (int64, error) {
	stmt, err := s.Db.Prepare("INSERT INTO users (email, role) VALUES (?, ?)")
	if err != nil {
		return 0, fmt.Errorf("CreateUser: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(email, role)
	if err != nil {
		return 0, fmt.Errorf("CreateUser: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateUser: last insert id: %w", err)
	}

	return lastID, nil
}

// GetUserByID fetches exactly one user row matched by primary key.
func (s *SQLite) GetUserByID(id int64) (types.User, error) {
	var user types.User

	err := s.Db.QueryRow(
		"SELECT id, email, role FROM users WHERE id = ? LIMIT 1", id,
	).Scan(&user.ID, &user.Email, &user.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.User{}, fmt.Errorf("user id %d: %w", id, storage.ErrNotFound)
		}
		return types.User{}, fmt.Errorf("GetUserByID: scan: %w", err)
	}

	return user, nil
}

// GetUsersByRole returns every user carrying the given role, ordered by
// id so the listing is stable across calls.
func (s *SQLite) GetUsersByRole(role string) ([]types.User, error) {
	rows, err := s.Db.Query(
		"SELECT id, email, role FROM users WHERE role = ? ORDER BY id", role,
	)
	if err != nil {
		return nil, fmt.Errorf("GetUsersByRole: query: %w", err)
	}
	defer rows.Close()

	users := make([]types.User, 0)

	for rows.Next() {
		var user types.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Role); err != nil {
			return nil, fmt.Errorf("GetUsersByRole: scan row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetUsersByRole: rows iteration: %w", err)
	}

	return users, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Lab sections
// ─────────────────────────────────────────────────────────────────────────────

// CreateLabSection inserts a new lab section and its initial TA set in
// one transaction: either the section lands with its whole TA set, or
// nothing is written. Foreign keys reject a course_id that matches no
// course and TA ids that match no user.
func (s *SQLite) CreateLabSection(input types.LabSectionInput) (int64, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return 0, fmt.Errorf("CreateLabSection: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op, so the deferred
	// call only matters on the error paths.
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO lab_sections (course_id, number, schedule) VALUES (?, ?, ?)",
		input.CourseID, input.Number, input.Schedule,
	)
	if err != nil {
		return 0, fmt.Errorf("CreateLabSection: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateLabSection: last insert id: %w", err)
	}

	for _, userID := range input.TAIDs {
		if err := assignTA(tx, lastID, userID); err != nil {
			return 0, fmt.Errorf("CreateLabSection: assign ta %d: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("CreateLabSection: commit: %w", err)
	}

	return lastID, nil
}

// GetLabSectionByID fetches one section with its course embedded (via a
// join) and its TA set attached.
func (s *SQLite) GetLabSectionByID(id int64) (types.LabSection, error) {
	var section types.LabSection

	err := s.Db.QueryRow(`
		SELECT ls.id, ls.number, ls.schedule,
		       c.id, c.code, c.title, c.year
		FROM lab_sections ls
		JOIN courses c ON c.id = ls.course_id
		WHERE ls.id = ?
		LIMIT 1`, id,
	).Scan(
		&section.ID, &section.Number, &section.Schedule,
		&section.Course.ID, &section.Course.Code,
		&section.Course.Title, &section.Course.Year,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.LabSection{}, fmt.Errorf("lab section id %d: %w", id, storage.ErrNotFound)
		}
		return types.LabSection{}, fmt.Errorf("GetLabSectionByID: scan: %w", err)
	}

	section.TAs, err = s.tasForSection(section.ID)
	if err != nil {
		return types.LabSection{}, fmt.Errorf("GetLabSectionByID: %w", err)
	}

	return section, nil
}

// GetLabSections returns all sections, each with course and TA set
// attached, ordered by id.
func (s *SQLite) GetLabSections() ([]types.LabSection, error) {
	rows, err := s.Db.Query(`
		SELECT ls.id, ls.number, ls.schedule,
		       c.id, c.code, c.title, c.year
		FROM lab_sections ls
		JOIN courses c ON c.id = ls.course_id
		ORDER BY ls.id`)
	if err != nil {
		return nil, fmt.Errorf("GetLabSections: query: %w", err)
	}
	defer rows.Close()

	sections := make([]types.LabSection, 0)

	for rows.Next() {
		var section types.LabSection
		if err := rows.Scan(
			&section.ID, &section.Number, &section.Schedule,
			&section.Course.ID, &section.Course.Code,
			&section.Course.Title, &section.Course.Year,
		); err != nil {
			return nil, fmt.Errorf("GetLabSections: scan row: %w", err)
		}
		sections = append(sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetLabSections: rows iteration: %w", err)
	}

	// Attach TA sets after the cursor is drained: SQLite allows only a
	// limited number of concurrently open result sets per connection.
	for i := range sections {
		sections[i].TAs, err = s.tasForSection(sections[i].ID)
		if err != nil {
			return nil, fmt.Errorf("GetLabSections: %w", err)
		}
	}

	return sections, nil
}

// UpdateLabSectionByID replaces a section's fields and its entire TA
// set in one transaction, so a failed write leaves the previous record
// (including its TA set) untouched. Returns the updated record so the
// caller can echo it back.
func (s *SQLite) UpdateLabSectionByID(id int64, input types.LabSectionInput) (types.LabSection, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return types.LabSection{}, fmt.Errorf("UpdateLabSectionByID: begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE lab_sections SET course_id = ?, number = ?, schedule = ? WHERE id = ?",
		input.CourseID, input.Number, input.Schedule, id,
	)
	if err != nil {
		return types.LabSection{}, fmt.Errorf("UpdateLabSectionByID: exec: %w", err)
	}

	// RowsAffected distinguishes "no such section" from a clean update;
	// UPDATE on a missing id is not an error at the SQL level.
	affected, err := result.RowsAffected()
	if err != nil {
		return types.LabSection{}, fmt.Errorf("UpdateLabSectionByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.LabSection{}, fmt.Errorf("lab section id %d: %w", id, storage.ErrNotFound)
	}

	// Update replaces the whole TA set, matching form semantics where
	// the submitted selection is authoritative.
	if _, err := tx.Exec("DELETE FROM lab_section_tas WHERE lab_section_id = ?", id); err != nil {
		return types.LabSection{}, fmt.Errorf("UpdateLabSectionByID: clear tas: %w", err)
	}
	for _, userID := range input.TAIDs {
		if err := assignTA(tx, id, userID); err != nil {
			return types.LabSection{}, fmt.Errorf("UpdateLabSectionByID: assign ta %d: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return types.LabSection{}, fmt.Errorf("UpdateLabSectionByID: commit: %w", err)
	}

	// Re-fetch so we return exactly what is stored in the DB.
	return s.GetLabSectionByID(id)
}

// DeleteLabSectionByID removes a section row by primary key; the join
// table cascades.
func (s *SQLite) DeleteLabSectionByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM lab_sections WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteLabSectionByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeleteLabSectionByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteLabSectionByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("lab section id %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

// AssignTA adds a user to a section's TA set.
//
// INSERT OR IGNORE against the composite primary key makes a repeat
// assignment a no-op, which is exactly the set semantics the TA
// relationship requires.
func (s *SQLite) AssignTA(sectionID, userID int64) error {
	return assignTA(s.Db, sectionID, userID)
}

// execer is the subset of database/sql shared by *sql.DB and *sql.Tx,
// so assignTA can run standalone or inside a write transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func assignTA(db execer, sectionID, userID int64) error {
	_, err := db.Exec(
		"INSERT OR IGNORE INTO lab_section_tas (lab_section_id, user_id) VALUES (?, ?)",
		sectionID, userID,
	)
	if err != nil {
		return fmt.Errorf("AssignTA: exec: %w", err)
	}
	return nil
}

// tasForSection loads the TA set for one section, ordered by user id.
func (s *SQLite) tasForSection(sectionID int64) ([]types.User, error) {
	rows, err := s.Db.Query(`
		SELECT u.id, u.email, u.role
		FROM lab_section_tas lst
		JOIN users u ON u.id = lst.user_id
		WHERE lst.lab_section_id = ?
		ORDER BY u.id`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("tasForSection: query: %w", err)
	}
	defer rows.Close()

	tas := make([]types.User, 0)

	for rows.Next() {
		var user types.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Role); err != nil {
			return nil, fmt.Errorf("tasForSection: scan row: %w", err)
		}
		tas = append(tas, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tasForSection: rows iteration: %w", err)
	}

	return tas, nil
}
