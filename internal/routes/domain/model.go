package domain

import "time"

// Language identifies the guest language an endpoint's handler is written in.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
)

func (l Language) Valid() bool {
	return l == LangJavaScript || l == LangPython
}

// Endpoint is a user-supplied handler exposed at a unique URL path under
// /api/<project-slug>/. Parameters is the ordered list of query-string
// names extracted for GET invocations; it persists as a comma-joined string.
type Endpoint struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Parameters []string  `json:"parameters"`
	Code       string    `json:"code"`
	Language   Language  `json:"language"`
	HTTPMethod string    `json:"httpMethod"`
	ProjectID  string    `json:"projectId"`
	OwnerID    string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`

	// Display fields joined from projects/users; nullable so partial
	// rows never fail decoding.
	ProjectName *string `json:"projectName,omitempty"`
	UserEmail   *string `json:"userEmail,omitempty"`
}

// Page is a stored HTML document served verbatim at a unique URL path
// under /<project-slug>/.
type Page struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	HTMLContent string    `json:"htmlContent"`
	ProjectID   string    `json:"projectId"`
	OwnerID     string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`

	ProjectName *string `json:"projectName,omitempty"`
	UserEmail   *string `json:"userEmail,omitempty"`
}

// EndpointUpdate carries a partial update; nil fields are left unchanged.
type EndpointUpdate struct {
	Path       *string
	Parameters *[]string
	Code       *string
	Language   *Language
	HTTPMethod *string
}

func (u EndpointUpdate) Empty() bool {
	return u.Path == nil && u.Parameters == nil && u.Code == nil &&
		u.Language == nil && u.HTTPMethod == nil
}

// PageUpdate carries a partial update; nil fields are left unchanged.
type PageUpdate struct {
	Path        *string
	HTMLContent *string
}

func (u PageUpdate) Empty() bool {
	return u.Path == nil && u.HTMLContent == nil
}
