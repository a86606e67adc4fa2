package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlasbot/gh-demo-bootstrap/internal/config"
	"github.com/atlasbot/gh-demo-bootstrap/internal/github"
	"github.com/atlasbot/gh-demo-bootstrap/internal/github/projectref"
)

// seedIssueTitle and seedIssueBody are the inline fallback used when the
// configured issue template cannot be applied.
const (
	seedIssueTitle = "Refine the demo backlog"
	seedIssueBody  = "Work through the seeded backlog: refine this issue, move it across " +
		"the board stages, and exercise the workflow automation. The control " +
		"block below drives the automated transitions."
)

// seedIssueLabels is the required label set on the starter issue.
var seedIssueLabels = []string{"refine"}

// Service orchestrates one bootstrap run: create the repository, copy the
// project board, reconcile the Stage field, seed labels and the starter
// issue, then link the issue to the board. Stages run strictly in order;
// the first fatal error aborts the run with no cleanup, leaving earlier
// side effects in place for inspection.
type Service struct {
	client      github.Client
	cfg         *config.Config
	templateRef *projectref.Ref
}

// NewService creates the orchestrator. The template project reference is
// parsed here so a malformed reference fails before any remote call.
func NewService(client github.Client, cfg *config.Config) (*Service, error) {
	ref, err := projectref.Parse(cfg.TemplateProject)
	if err != nil {
		return nil, fmt.Errorf("template project reference: %w", err)
	}
	return &Service{client: client, cfg: cfg, templateRef: ref}, nil
}

// Run executes the bootstrap sequence and returns the run state. On error
// the state reflects whatever stages completed.
func (s *Service) Run(ctx context.Context, repoName string) (*State, error) {
	st := &State{
		RepoOwner: s.cfg.Owner,
		RepoName:  repoName,
	}

	stages := []struct {
		name string
		run  func(context.Context, *State) error
	}{
		{"create-repository", s.createRepository},
		{"copy-project", s.copyProject},
		{"reconcile-stage-field", s.reconcileStageField},
		{"create-labels", s.createLabels},
		{"seed-issue", s.seedIssue},
		{"link-issue", s.linkIssue},
	}
	for _, stage := range stages {
		slog.Info("stage starting", "stage", stage.name)
		if err := stage.run(ctx, st); err != nil {
			return st, fmt.Errorf("stage %s: %w", stage.name, err)
		}
		slog.Info("stage complete", "stage", stage.name)
	}
	return st, nil
}

func (s *Service) createRepository(ctx context.Context, st *State) error {
	templateOwner, templateName := s.cfg.SplitTemplateRepo()
	repo, err := s.client.CreateRepoFromTemplate(ctx, templateOwner, templateName, st.RepoOwner, st.RepoName)
	if err != nil {
		return err
	}
	st.RepoURL = repo.URL
	slog.Info("repository created", "repo", repo.URL)
	return nil
}

func (s *Service) copyProject(ctx context.Context, st *State) error {
	sourceOwner := s.templateRef.Owner
	if sourceOwner == "" {
		// A bare-number reference means the template board lives under the
		// owning account.
		sourceOwner = s.cfg.Owner
	}
	project, err := s.client.CopyProject(ctx, sourceOwner, s.templateRef.Number, s.cfg.Owner, st.RepoName)
	if err != nil {
		return err
	}
	st.ProjectID = project.ID
	st.ProjectNumber = project.Number
	st.ProjectURL = project.URL
	slog.Info("project copied", "project", project.URL, "number", project.Number)
	return nil
}

func (s *Service) reconcileStageField(ctx context.Context, st *State) error {
	schema, err := ReconcileStageField(ctx, s.client, st.ProjectID)
	if err != nil {
		return err
	}
	st.StageFieldID = schema.FieldID
	st.BacklogOptionID = schema.DefaultOptionID()
	slog.Info("stage field reconciled", "field", st.StageFieldID, "options", len(schema.OptionIDs))
	return nil
}

func (s *Service) createLabels(ctx context.Context, st *State) error {
	return EnsureLabels(ctx, s.client, st.RepoOwner, st.RepoName, DefaultLabels())
}

func (s *Service) seedIssue(ctx context.Context, st *State) error {
	issue, err := SeedIssue(ctx, s.client, st.RepoOwner, st.RepoName, SeedSpec{
		Title:        seedIssueTitle,
		FallbackBody: seedIssueBody,
		Labels:       seedIssueLabels,
		TemplateName: s.cfg.IssueTemplate,
	})
	if err != nil {
		return err
	}
	st.IssueNumber = issue.Number
	st.IssueNodeID = issue.NodeID
	st.IssueURL = issue.URL
	return nil
}

func (s *Service) linkIssue(ctx context.Context, st *State) error {
	result, err := LinkIssue(ctx, s.client, st.ProjectID, st.IssueNodeID, st.StageFieldID, st.BacklogOptionID, s.cfg.StageSetFatal)
	if err != nil {
		return err
	}
	st.ProjectItemID = result.ItemID
	st.StageSetFailed = result.StageSetFailed
	return nil
}
