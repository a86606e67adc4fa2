package github

import (
	"context"
)

// Repo identifies a repository created from a template.
type Repo struct {
	Owner string
	Name  string
	URL   string
}

// Project represents a GitHub project (v2) copied from a template board.
type Project struct {
	ID     string
	Number int
	Title  string
	URL    string
}

// Option is a single-select field option. Options are addressed by name when
// checking presence and by ID when assigning values. Color and Description
// are carried so that option-list rewrites do not reset a template board's
// styling.
type Option struct {
	ID          string
	Name        string
	Color       string
	Description string
}

// Field is a project field. Type carries the GraphQL typename, e.g.
// "ProjectV2SingleSelectField"; Options is only populated for single-select
// fields.
type Field struct {
	ID      string
	Name    string
	Type    string
	Options []Option
}

// IsSingleSelect reports whether the field is a single-select field.
func (f Field) IsSingleSelect() bool {
	return f.Type == "ProjectV2SingleSelectField"
}

// Label represents a repository label.
type Label struct {
	Name        string
	Color       string
	Description string
}

// Issue represents a created issue. NodeID is the GraphQL node ID used when
// adding the issue to a project.
type Issue struct {
	Number int
	NodeID string
	URL    string
	Body   string
}

// IssueRequest carries the fields for issue creation.
type IssueRequest struct {
	Title  string
	Body   string
	Labels []string
}

// Client defines the typed interface for interacting with GitHub. Operations
// map 1:1 to remote capabilities and perform no retries; errors are surfaced
// verbatim, wrapped with the failing operation.
type Client interface {
	// CreateRepoFromTemplate generates a new repository from a template repository.
	CreateRepoFromTemplate(ctx context.Context, templateOwner, templateRepo, owner, name string) (*Repo, error)

	// CopyProject copies a template project board, duplicating its field
	// schema, and returns the new project's id, number and url.
	CopyProject(ctx context.Context, sourceOwner string, sourceNumber int, targetOwner, title string) (*Project, error)

	// ListProjectFields retrieves a project's fields with their options,
	// normalized to a single canonical slice shape.
	ListProjectFields(ctx context.Context, projectID string) ([]Field, error)

	// CreateSingleSelectField creates a single-select field with the given
	// options, in order, in one call.
	CreateSingleSelectField(ctx context.Context, projectID, name string, options []string) error

	// AddFieldOption appends one option to a single-select field. The remote
	// API replaces the option list wholesale, so the caller passes the
	// current options; their order is preserved.
	AddFieldOption(ctx context.Context, fieldID, name string, existing []Option) error

	// CreateLabel creates a repository label. A label that already exists is
	// treated as success.
	CreateLabel(ctx context.Context, owner, repo string, label Label) error

	// CreateIssue opens an issue and returns its number, node id and url.
	CreateIssue(ctx context.Context, owner, repo string, req IssueRequest) (*Issue, error)

	// GetIssueBody reads an issue's current body.
	GetIssueBody(ctx context.Context, owner, repo string, number int) (string, error)

	// UpdateIssueBody replaces an issue's body.
	UpdateIssueBody(ctx context.Context, owner, repo string, number int, body string) error

	// AddIssueToProject adds an issue to a project and returns the project
	// item id.
	AddIssueToProject(ctx context.Context, projectID, issueNodeID string) (string, error)

	// SetItemFieldValue sets a project item's single-select field to the
	// given option id.
	SetItemFieldValue(ctx context.Context, projectID, itemID, fieldID, optionID string) error

	// GetFileContent fetches a file from the repository's default branch.
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
}
