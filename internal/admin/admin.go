// Package admin holds the declarative metadata consumed by the
// administrative browsing tool. It carries no business logic: which
// columns to show, which fields to search, which to filter by — plus
// the one computed column, the TA display string.
package admin

import (
	"net/http"
	"strings"

	"github.com/aanand-mishra/labsections-api/internal/types"
	"github.com/aanand-mishra/labsections-api/internal/utils/response"
)

// Metadata describes how a browsing tool should present an entity.
// Search fields use the double-underscore path convention for related
// entities (e.g. "course__code").
type Metadata struct {
	ListDisplay  []string `json:"list_display"`
	SearchFields []string `json:"search_fields"`
	ListFilter   []string `json:"list_filter"`
}

// LabSections is the browse configuration for the lab-section entity.
// display_tas is the computed column rendered by DisplayTAs.
func LabSections() Metadata {
	return Metadata{
		ListDisplay:  []string{"course", "number", "schedule", "display_tas"},
		SearchFields: []string{"course__code", "course__title", "number"},
		ListFilter:   []string{"course"},
	}
}

// DisplayTAs renders a section's TA set as a single comma-free string
// for the display_tas column: the bare email for one TA, "" for none,
// and a "; "-joined list for several.
func DisplayTAs(section types.LabSection) string {
	emails := make([]string, 0, len(section.TAs))
	for _, ta := range section.TAs {
		emails = append(emails, ta.Email)
	}
	return strings.Join(emails, "; ")
}

// Handler serves GET /api/admin/lab-sections: the static metadata
// document, read-only.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, LabSections())
	}
}
