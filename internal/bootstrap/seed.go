package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atlasbot/gh-demo-bootstrap/internal/github"
	"github.com/atlasbot/gh-demo-bootstrap/internal/github/issuetemplate"
)

// ErrIssueCreation is returned when both the template-based and the inline
// creation paths have failed. Downstream stages require an issue, so this is
// fatal.
var ErrIssueCreation = errors.New("issue creation failed")

// SeedSpec describes the starter issue.
type SeedSpec struct {
	Title        string
	FallbackBody string
	Labels       []string
	// TemplateName is the issue template filename tried first; empty
	// disables the template path.
	TemplateName string
}

// SeedIssue creates the starter issue and appends the control block to its
// body exactly once. Creation goes through the issue template when one is
// configured and falls back to the inline body on any template failure.
func SeedIssue(ctx context.Context, client github.Client, owner, repo string, spec SeedSpec) (*github.Issue, error) {
	issue, err := createSeedIssue(ctx, client, owner, repo, spec)
	if err != nil {
		return nil, err
	}
	slog.Info("issue created", "issue", issue.URL)

	// Read-modify-write: re-fetch the body rather than trusting the create
	// response, and skip the append when the marker is already present.
	body, err := client.GetIssueBody(ctx, owner, repo, issue.Number)
	if err != nil {
		return nil, fmt.Errorf("read issue body: %w", err)
	}
	if HasControlBlock(body) {
		slog.Debug("control block already present", "issue", issue.URL)
		return issue, nil
	}
	if err := client.UpdateIssueBody(ctx, owner, repo, issue.Number, AppendControlBlock(body)); err != nil {
		return nil, fmt.Errorf("append control block: %w", err)
	}
	return issue, nil
}

func createSeedIssue(ctx context.Context, client github.Client, owner, repo string, spec SeedSpec) (*github.Issue, error) {
	if spec.TemplateName != "" {
		issue, err := createFromTemplate(ctx, client, owner, repo, spec)
		if err == nil {
			return issue, nil
		}
		slog.Warn("template-based issue creation failed, falling back to inline body",
			"template", spec.TemplateName,
			"error", err,
		)
	}

	issue, err := client.CreateIssue(ctx, owner, repo, github.IssueRequest{
		Title:  spec.Title,
		Body:   spec.FallbackBody,
		Labels: spec.Labels,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIssueCreation, err)
	}
	return issue, nil
}

func createFromTemplate(ctx context.Context, client github.Client, owner, repo string, spec SeedSpec) (*github.Issue, error) {
	tmpl, err := issuetemplate.Fetch(ctx, client, owner, repo, spec.TemplateName)
	if err != nil {
		return nil, err
	}

	req := github.IssueRequest{
		Title:  spec.Title,
		Body:   tmpl.Body,
		Labels: mergeLabels(spec.Labels, tmpl.Labels),
	}
	if tmpl.Title != "" {
		req.Title = tmpl.Title
	}
	return client.CreateIssue(ctx, owner, repo, req)
}

// mergeLabels unions the required label set with the template's labels,
// preserving order and dropping duplicates.
func mergeLabels(required, extra []string) []string {
	seen := make(map[string]bool, len(required)+len(extra))
	merged := make([]string, 0, len(required)+len(extra))
	for _, name := range append(append([]string{}, required...), extra...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		merged = append(merged, name)
	}
	return merged
}
