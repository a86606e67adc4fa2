package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbot/gh-demo-bootstrap/internal/github"
)

// collapseBackoff makes the reconciler's re-read loop fail fast in tests.
func collapseBackoff(t *testing.T) {
	t.Helper()
	orig := newReconcileBackoff
	newReconcileBackoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 3)
	}
	t.Cleanup(func() { newReconcileBackoff = orig })
}

func fullStageField() github.Field {
	return github.Field{
		ID:   "F1",
		Name: "Stage",
		Type: "ProjectV2SingleSelectField",
		Options: []github.Option{
			{ID: "O1", Name: "Backlog"},
			{ID: "O2", Name: "Refinement"},
			{ID: "O3", Name: "Ready"},
			{ID: "O4", Name: "In Progress"},
			{ID: "O5", Name: "Review"},
			{ID: "O6", Name: "Done"},
		},
	}
}

func TestReconcileIsNoOpWhenAllOptionsPresent(t *testing.T) {
	collapseBackoff(t)

	var optionCreates, fieldCreates int
	mockClient := &github.MockClient{
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			return []github.Field{fullStageField()}, nil
		},
		AddFieldOptionFunc: func(ctx context.Context, fieldID, name string, existing []github.Option) error {
			optionCreates++
			return nil
		},
		CreateSingleSelectFieldFunc: func(ctx context.Context, projectID, name string, options []string) error {
			fieldCreates++
			return nil
		},
	}

	schema, err := ReconcileStageField(context.Background(), mockClient, "P1")
	require.NoError(t, err)

	assert.Zero(t, optionCreates, "expected no option creation on an already reconciled project")
	assert.Zero(t, fieldCreates)
	assert.Equal(t, "F1", schema.FieldID)
	assert.Equal(t, "O1", schema.DefaultOptionID())
}

func TestReconcileCreatesFieldWhenMissing(t *testing.T) {
	collapseBackoff(t)

	var created [][]string
	var listCalls int
	mockClient := &github.MockClient{
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			listCalls++
			if listCalls == 1 {
				// A text field that happens to be named Stage must not be
				// mistaken for the single-select Stage field.
				return []github.Field{
					{ID: "T1", Name: "Stage", Type: "ProjectV2Field"},
				}, nil
			}
			return []github.Field{
				{ID: "T1", Name: "Stage", Type: "ProjectV2Field"},
				fullStageField(),
			}, nil
		},
		CreateSingleSelectFieldFunc: func(ctx context.Context, projectID, name string, options []string) error {
			created = append(created, append([]string{name}, options...))
			return nil
		},
		AddFieldOptionFunc: func(ctx context.Context, fieldID, name string, existing []github.Option) error {
			t.Errorf("unexpected AddFieldOption call for %q", name)
			return nil
		},
	}

	schema, err := ReconcileStageField(context.Background(), mockClient, "P1")
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, []string{"Stage", "Backlog", "Refinement", "Ready", "In Progress", "Review", "Done"}, created[0])
	assert.Equal(t, "F1", schema.FieldID)
	assert.Equal(t, "O1", schema.DefaultOptionID())
}

func TestReconcileCreatesOnlyMissingOptions(t *testing.T) {
	collapseBackoff(t)

	var createdOptions []string
	var listCalls int
	mockClient := &github.MockClient{
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			listCalls++
			if listCalls == 1 {
				return []github.Field{
					{
						ID:      "F1",
						Name:    "Stage",
						Type:    "ProjectV2SingleSelectField",
						Options: []github.Option{{ID: "O1", Name: "Backlog"}},
					},
				}, nil
			}
			return []github.Field{fullStageField()}, nil
		},
		AddFieldOptionFunc: func(ctx context.Context, fieldID, name string, existing []github.Option) error {
			assert.Equal(t, "F1", fieldID)
			createdOptions = append(createdOptions, name)
			return nil
		},
		CreateSingleSelectFieldFunc: func(ctx context.Context, projectID, name string, options []string) error {
			t.Error("unexpected CreateSingleSelectField call")
			return nil
		},
	}

	schema, err := ReconcileStageField(context.Background(), mockClient, "P1")
	require.NoError(t, err)

	assert.Equal(t, []string{"Refinement", "Ready", "In Progress", "Review", "Done"}, createdOptions)
	assert.Equal(t, "O1", schema.DefaultOptionID())
	// Every required name maps to an id after reconciliation.
	for _, name := range RequiredStageOptions {
		assert.Contains(t, schema.OptionIDs, name)
	}
}

func TestReconcilePreservesExistingOptionsOnAppend(t *testing.T) {
	collapseBackoff(t)

	var listCalls int
	mockClient := &github.MockClient{
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			listCalls++
			if listCalls == 1 {
				return []github.Field{
					{
						ID:   "F1",
						Name: "Stage",
						Type: "ProjectV2SingleSelectField",
						Options: []github.Option{
							{ID: "OX", Name: "Icebox", Color: "BLUE", Description: "frozen"},
							{ID: "O1", Name: "Backlog"},
						},
					},
				}, nil
			}
			field := fullStageField()
			field.Options = append([]github.Option{{ID: "OX", Name: "Icebox"}}, field.Options...)
			return []github.Field{field}, nil
		},
		AddFieldOptionFunc: func(ctx context.Context, fieldID, name string, existing []github.Option) error {
			// Pre-existing options must always be resent with their
			// styling intact, never dropped.
			assert.Equal(t, "Icebox", existing[0].Name)
			assert.Equal(t, "BLUE", existing[0].Color)
			assert.Equal(t, "frozen", existing[0].Description)
			return nil
		},
	}

	schema, err := ReconcileStageField(context.Background(), mockClient, "P1")
	require.NoError(t, err)

	// Extra pre-existing options are tolerated and keep their ids.
	assert.Equal(t, "OX", schema.OptionIDs["Icebox"])
	assert.Equal(t, "O1", schema.DefaultOptionID())
}

func TestReconcileOptionMatchIsCaseSensitive(t *testing.T) {
	collapseBackoff(t)

	var createdOptions []string
	var listCalls int
	mockClient := &github.MockClient{
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			listCalls++
			if listCalls == 1 {
				// Lowercase field name matches (case-insensitive), but the
				// lowercase option does not satisfy "Backlog".
				return []github.Field{
					{
						ID:      "F1",
						Name:    "stage",
						Type:    "ProjectV2SingleSelectField",
						Options: []github.Option{{ID: "o1", Name: "backlog"}},
					},
				}, nil
			}
			field := fullStageField()
			field.Name = "stage"
			field.Options = append([]github.Option{{ID: "o1", Name: "backlog"}}, field.Options...)
			return []github.Field{field}, nil
		},
		AddFieldOptionFunc: func(ctx context.Context, fieldID, name string, existing []github.Option) error {
			createdOptions = append(createdOptions, name)
			return nil
		},
	}

	schema, err := ReconcileStageField(context.Background(), mockClient, "P1")
	require.NoError(t, err)

	assert.Equal(t, RequiredStageOptions, createdOptions)
	assert.Equal(t, "O1", schema.DefaultOptionID())
}

func TestReconcileFailsWhenDefaultOptionNeverAppears(t *testing.T) {
	collapseBackoff(t)

	mockClient := &github.MockClient{
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			// The listing never catches up: Backlog stays missing.
			return []github.Field{
				{
					ID:      "F1",
					Name:    "Stage",
					Type:    "ProjectV2SingleSelectField",
					Options: []github.Option{{ID: "O2", Name: "Refinement"}},
				},
			}, nil
		},
	}

	_, err := ReconcileStageField(context.Background(), mockClient, "P1")
	assert.ErrorIs(t, err, ErrStageOptionMissing)
}

func TestReconcileSurfacesListError(t *testing.T) {
	collapseBackoff(t)

	listErr := errors.New("boom")
	mockClient := &github.MockClient{
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			return nil, listErr
		},
	}

	_, err := ReconcileStageField(context.Background(), mockClient, "P1")
	assert.ErrorIs(t, err, listErr)
}

func TestReconcilePicksFirstStageFieldInListingOrder(t *testing.T) {
	collapseBackoff(t)

	first := fullStageField()
	second := fullStageField()
	second.ID = "F2"
	mockClient := &github.MockClient{
		ListProjectFieldsFunc: func(ctx context.Context, projectID string) ([]github.Field, error) {
			return []github.Field{first, second}, nil
		},
	}

	schema, err := ReconcileStageField(context.Background(), mockClient, "P1")
	require.NoError(t, err)
	assert.Equal(t, "F1", schema.FieldID)
}
