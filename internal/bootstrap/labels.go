package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlasbot/gh-demo-bootstrap/internal/github"
)

// labelColor is the flat color applied to every seeded label.
const labelColor = "ededed"

// defaultLabelNames is the fixed label set the workflow automation expects
// on the demo repository. The control block's add/remove actions reference
// these names.
var defaultLabelNames = []string{
	"refine",
	"ready",
	"in-progress",
	"review",
	"done",
	"blocked",
}

// DefaultLabels returns the seeded label set.
func DefaultLabels() []github.Label {
	labels := make([]github.Label, 0, len(defaultLabelNames))
	for _, name := range defaultLabelNames {
		labels = append(labels, github.Label{Name: name, Color: labelColor})
	}
	return labels
}

// EnsureLabels creates the given labels on the repository. Already-existing
// labels are success by the client contract, so re-runs are no-ops.
func EnsureLabels(ctx context.Context, client github.Client, owner, repo string, labels []github.Label) error {
	for _, label := range labels {
		if err := client.CreateLabel(ctx, owner, repo, label); err != nil {
			return fmt.Errorf("ensure label %q: %w", label.Name, err)
		}
		slog.Debug("label ensured", "label", label.Name)
	}
	return nil
}
