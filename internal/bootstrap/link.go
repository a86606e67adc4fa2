package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlasbot/gh-demo-bootstrap/internal/github"
)

// LinkResult reports the outcome of linking an issue to the project board.
type LinkResult struct {
	ItemID string
	// StageSetFailed is true when the item was added but the stage
	// assignment failed and was swallowed.
	StageSetFailed bool
}

// LinkIssue adds the issue to the project and sets its Stage field to the
// given option. The item-add is the primary success signal; a stage-set
// failure is swallowed unless stageSetFatal is set, since the item still
// lands in the board's backlog either way.
func LinkIssue(ctx context.Context, client github.Client, projectID, issueNodeID, fieldID, optionID string, stageSetFatal bool) (*LinkResult, error) {
	itemID, err := client.AddIssueToProject(ctx, projectID, issueNodeID)
	if err != nil {
		return nil, fmt.Errorf("add issue to project: %w", err)
	}
	slog.Info("issue linked to project", "item", itemID)

	if err := client.SetItemFieldValue(ctx, projectID, itemID, fieldID, optionID); err != nil {
		if stageSetFatal {
			return nil, fmt.Errorf("set stage on project item: %w", err)
		}
		slog.Warn("failed to set stage on project item, leaving item unstaged",
			"item", itemID,
			"error", err,
		)
		return &LinkResult{ItemID: itemID, StageSetFailed: true}, nil
	}
	return &LinkResult{ItemID: itemID}, nil
}
