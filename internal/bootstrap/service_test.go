package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbot/gh-demo-bootstrap/internal/config"
	"github.com/atlasbot/gh-demo-bootstrap/internal/github"
)

func testConfig() *config.Config {
	return &config.Config{
		Owner:           "acme",
		TemplateRepo:    "acme/starter",
		TemplateProject: "https://github.com/orgs/acme/projects/18",
	}
}

func TestRunHappyPath(t *testing.T) {
	collapseBackoff(t)

	var labelNames []string
	var linkedBody string
	mockClient := &github.MockClient{
		CreateRepoFromTemplateFunc: func(ctx context.Context, templateOwner, templateRepo, owner, name string) (*github.Repo, error) {
			assert.Equal(t, "acme", templateOwner)
			assert.Equal(t, "starter", templateRepo)
			assert.Equal(t, "acme", owner)
			assert.Equal(t, "demo-day", name)
			return &github.Repo{Owner: owner, Name: name, URL: "https://github.com/acme/demo-day"}, nil
		},
		CopyProjectFunc: func(ctx context.Context, sourceOwner string, sourceNumber int, targetOwner, title string) (*github.Project, error) {
			assert.Equal(t, "acme", sourceOwner)
			assert.Equal(t, 18, sourceNumber)
			assert.Equal(t, "acme", targetOwner)
			assert.Equal(t, "demo-day", title)
			return &github.Project{ID: "P1", Number: 42, URL: "https://github.com/orgs/acme/projects/42"}, nil
		},
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			assert.Equal(t, "P1", projectID)
			return []github.Field{fullStageField()}, nil
		},
		CreateLabelFunc: func(ctx context.Context, owner, repo string, label github.Label) error {
			labelNames = append(labelNames, label.Name)
			return nil
		},
		CreateIssueFunc: func(ctx context.Context, owner, repo string, req github.IssueRequest) (*github.Issue, error) {
			return &github.Issue{Number: 1, NodeID: "I1", URL: "https://github.com/acme/demo-day/issues/1", Body: req.Body}, nil
		},
		GetIssueBodyFunc: func(ctx context.Context, owner, repo string, number int) (string, error) {
			return "seeded", nil
		},
		UpdateIssueBodyFunc: func(ctx context.Context, owner, repo string, number int, body string) error {
			linkedBody = body
			return nil
		},
		AddIssueToProjectFunc: func(ctx context.Context, projectID, issueNodeID string) (string, error) {
			assert.Equal(t, "P1", projectID)
			assert.Equal(t, "I1", issueNodeID)
			return "ITEM1", nil
		},
		SetItemFieldValueFunc: func(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
			assert.Equal(t, "ITEM1", itemID)
			assert.Equal(t, "F1", fieldID)
			assert.Equal(t, "O1", optionID)
			return nil
		},
	}

	service, err := NewService(mockClient, testConfig())
	require.NoError(t, err)

	state, err := service.Run(context.Background(), "demo-day")
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/acme/demo-day", state.RepoURL)
	assert.Equal(t, "P1", state.ProjectID)
	assert.Equal(t, 42, state.ProjectNumber)
	assert.Equal(t, "F1", state.StageFieldID)
	assert.Equal(t, "O1", state.BacklogOptionID)
	assert.Equal(t, "https://github.com/acme/demo-day/issues/1", state.IssueURL)
	assert.Equal(t, "ITEM1", state.ProjectItemID)
	assert.False(t, state.StageSetFailed)

	assert.Equal(t, []string{"refine", "ready", "in-progress", "review", "done", "blocked"}, labelNames)
	assert.Equal(t, 1, strings.Count(linkedBody, ControlBlockMarker))
}

func TestRunAbortsWithStageLabeledError(t *testing.T) {
	copyErr := errors.New("copy exploded")
	mockClient := &github.MockClient{
		CreateRepoFromTemplateFunc: func(ctx context.Context, templateOwner, templateRepo, owner, name string) (*github.Repo, error) {
			return &github.Repo{URL: "https://github.com/acme/demo-day"}, nil
		},
		CopyProjectFunc: func(ctx context.Context, sourceOwner string, sourceNumber int, targetOwner, title string) (*github.Project, error) {
			return nil, copyErr
		},
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			t.Error("unexpected call past the failing stage")
			return nil, nil
		},
	}

	service, err := NewService(mockClient, testConfig())
	require.NoError(t, err)

	state, err := service.Run(context.Background(), "demo-day")
	require.Error(t, err)
	assert.ErrorIs(t, err, copyErr)
	assert.Contains(t, err.Error(), "stage copy-project")
	// Earlier side effects remain recorded; there is no rollback.
	assert.Equal(t, "https://github.com/acme/demo-day", state.RepoURL)
}

func TestNewServiceRejectsMalformedTemplateReference(t *testing.T) {
	cfg := testConfig()
	cfg.TemplateProject = "abc"

	_, err := NewService(&github.MockClient{}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template project reference")
}

func TestRunBareNumberTemplateReferenceUsesOwner(t *testing.T) {
	collapseBackoff(t)

	cfg := testConfig()
	cfg.TemplateProject = "18"

	var copiedFrom string
	mockClient := &github.MockClient{
		CopyProjectFunc: func(ctx context.Context, sourceOwner string, sourceNumber int, targetOwner, title string) (*github.Project, error) {
			copiedFrom = sourceOwner
			return &github.Project{ID: "P1", Number: 42}, nil
		},
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			return []github.Field{fullStageField()}, nil
		},
		CreateIssueFunc: func(ctx context.Context, owner, repo string, req github.IssueRequest) (*github.Issue, error) {
			return &github.Issue{Number: 1, NodeID: "I1"}, nil
		},
	}

	service, err := NewService(mockClient, cfg)
	require.NoError(t, err)

	_, err = service.Run(context.Background(), "demo-day")
	require.NoError(t, err)
	assert.Equal(t, "acme", copiedFrom)
}
