package projects

import (
	"strings"
	"time"
)

// Project is a user-owned namespace grouping endpoints and pages.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Slug derives the URL segment for the project: lowercased name with
// runs of whitespace collapsed to a single dash.
func (p *Project) Slug() string {
	return Slug(p.Name)
}

func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
