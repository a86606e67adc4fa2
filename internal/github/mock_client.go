package github

import (
	"context"
)

// MockClient implements the Client interface for testing. Each method
// delegates to the corresponding function field when set and is a no-op
// returning zero values otherwise.
type MockClient struct {
	CreateRepoFromTemplateFunc  func(ctx context.Context, templateOwner, templateRepo, owner, name string) (*Repo, error)
	CopyProjectFunc             func(ctx context.Context, sourceOwner string, sourceNumber int, targetOwner, title string) (*Project, error)
	ListProjectFieldsFunc       func(ctx context.Context, projectID string) ([]Field, error)
	CreateSingleSelectFieldFunc func(ctx context.Context, projectID, name string, options []string) error
	AddFieldOptionFunc          func(ctx context.Context, fieldID, name string, existing []Option) error
	CreateLabelFunc             func(ctx context.Context, owner, repo string, label Label) error
	CreateIssueFunc             func(ctx context.Context, owner, repo string, req IssueRequest) (*Issue, error)
	GetIssueBodyFunc            func(ctx context.Context, owner, repo string, number int) (string, error)
	UpdateIssueBodyFunc         func(ctx context.Context, owner, repo string, number int, body string) error
	AddIssueToProjectFunc       func(ctx context.Context, projectID, issueNodeID string) (string, error)
	SetItemFieldValueFunc       func(ctx context.Context, projectID, itemID, fieldID, optionID string) error
	GetFileContentFunc          func(ctx context.Context, owner, repo, path string) (string, error)
}

// CreateRepoFromTemplate implements the Client interface
func (c *MockClient) CreateRepoFromTemplate(ctx context.Context, templateOwner, templateRepo, owner, name string) (*Repo, error) {
	if c.CreateRepoFromTemplateFunc != nil {
		return c.CreateRepoFromTemplateFunc(ctx, templateOwner, templateRepo, owner, name)
	}
	return &Repo{Owner: owner, Name: name}, nil
}

// CopyProject implements the Client interface
func (c *MockClient) CopyProject(ctx context.Context, sourceOwner string, sourceNumber int, targetOwner, title string) (*Project, error) {
	if c.CopyProjectFunc != nil {
		return c.CopyProjectFunc(ctx, sourceOwner, sourceNumber, targetOwner, title)
	}
	return &Project{}, nil
}

// ListProjectFields implements the Client interface
func (c *MockClient) ListProjectFields(ctx context.Context, projectID string) ([]Field, error) {
	if c.ListProjectFieldsFunc != nil {
		return c.ListProjectFieldsFunc(ctx, projectID)
	}
	return nil, nil
}

// CreateSingleSelectField implements the Client interface
func (c *MockClient) CreateSingleSelectField(ctx context.Context, projectID, name string, options []string) error {
	if c.CreateSingleSelectFieldFunc != nil {
		return c.CreateSingleSelectFieldFunc(ctx, projectID, name, options)
	}
	return nil
}

// AddFieldOption implements the Client interface
func (c *MockClient) AddFieldOption(ctx context.Context, fieldID, name string, existing []Option) error {
	if c.AddFieldOptionFunc != nil {
		return c.AddFieldOptionFunc(ctx, fieldID, name, existing)
	}
	return nil
}

// CreateLabel implements the Client interface
func (c *MockClient) CreateLabel(ctx context.Context, owner, repo string, label Label) error {
	if c.CreateLabelFunc != nil {
		return c.CreateLabelFunc(ctx, owner, repo, label)
	}
	return nil
}

// CreateIssue implements the Client interface
func (c *MockClient) CreateIssue(ctx context.Context, owner, repo string, req IssueRequest) (*Issue, error) {
	if c.CreateIssueFunc != nil {
		return c.CreateIssueFunc(ctx, owner, repo, req)
	}
	return &Issue{}, nil
}

// GetIssueBody implements the Client interface
func (c *MockClient) GetIssueBody(ctx context.Context, owner, repo string, number int) (string, error) {
	if c.GetIssueBodyFunc != nil {
		return c.GetIssueBodyFunc(ctx, owner, repo, number)
	}
	return "", nil
}

// UpdateIssueBody implements the Client interface
func (c *MockClient) UpdateIssueBody(ctx context.Context, owner, repo string, number int, body string) error {
	if c.UpdateIssueBodyFunc != nil {
		return c.UpdateIssueBodyFunc(ctx, owner, repo, number, body)
	}
	return nil
}

// AddIssueToProject implements the Client interface
func (c *MockClient) AddIssueToProject(ctx context.Context, projectID, issueNodeID string) (string, error) {
	if c.AddIssueToProjectFunc != nil {
		return c.AddIssueToProjectFunc(ctx, projectID, issueNodeID)
	}
	return "", nil
}

// SetItemFieldValue implements the Client interface
func (c *MockClient) SetItemFieldValue(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	if c.SetItemFieldValueFunc != nil {
		return c.SetItemFieldValueFunc(ctx, projectID, itemID, fieldID, optionID)
	}
	return nil
}

// GetFileContent implements the Client interface
func (c *MockClient) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	if c.GetFileContentFunc != nil {
		return c.GetFileContentFunc(ctx, owner, repo, path)
	}
	return "", nil
}
