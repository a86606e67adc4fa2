package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/atlasbot/gh-demo-bootstrap/internal/github"
)

// StageFieldName is the workflow-stage field every demo board must carry.
// The field name is matched case-insensitively; option names are matched
// exactly (case- and whitespace-sensitive).
const StageFieldName = "Stage"

// DefaultStageOption is the option newly seeded issues are placed in. Its id
// is required downstream; its absence after reconciliation is fatal.
const DefaultStageOption = "Backlog"

// RequiredStageOptions is the ordered option set the Stage field must
// contain. Pre-existing extra options are tolerated and never removed.
var RequiredStageOptions = []string{
	"Backlog",
	"Refinement",
	"Ready",
	"In Progress",
	"Review",
	"Done",
}

// ErrStageOptionMissing is returned when the default stage option cannot be
// resolved after reconciliation. This is a precondition violation, not a
// transient failure; the run must stop rather than proceed with an unset
// stage.
var ErrStageOptionMissing = errors.New("stage field missing required option")

// errNotVisible marks a re-read that has not yet caught up with a write.
var errNotVisible = errors.New("not yet visible")

// newReconcileBackoff bounds the wait for the field listing to catch up with
// option/field creation. Reads after writes are not immediately consistent,
// so the authoritative re-read polls briefly before giving up. Variable so
// tests can collapse the schedule.
var newReconcileBackoff = func() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 3 * time.Second
	bo.MaxElapsedTime = 15 * time.Second
	return bo
}

// StageSchema is the reconciled Stage field: its id and the authoritative
// option name to id mapping from the post-reconcile re-read.
type StageSchema struct {
	FieldID   string
	OptionIDs map[string]string
}

// DefaultOptionID returns the id of the default stage option.
func (s *StageSchema) DefaultOptionID() string {
	return s.OptionIDs[DefaultStageOption]
}

// ReconcileStageField ensures the project carries a single-select Stage
// field containing every required option, creating whatever is missing, and
// returns authoritative ids from a fresh listing. Running it twice against
// the same project performs no duplicate creation and yields identical ids.
func ReconcileStageField(ctx context.Context, client github.Client, projectID string) (*StageSchema, error) {
	fields, err := client.ListProjectFields(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project fields: %w", err)
	}

	if field := findStageField(fields); field != nil {
		// Append missing options in required order. Existing options keep
		// their positions; only new ones are ordered.
		current := field.Options
		for _, name := range RequiredStageOptions {
			if hasOption(current, name) {
				continue
			}
			slog.Info("creating stage option", "field", field.Name, "option", name)
			if err := client.AddFieldOption(ctx, field.ID, name, current); err != nil {
				return nil, fmt.Errorf("add stage option %q: %w", name, err)
			}
			current = append(current, github.Option{Name: name})
		}
	} else {
		slog.Info("creating stage field", "field", StageFieldName, "project", projectID)
		if err := client.CreateSingleSelectField(ctx, projectID, StageFieldName, RequiredStageOptions); err != nil {
			return nil, fmt.Errorf("create stage field: %w", err)
		}
	}

	// Ids returned by create calls are not trusted; a fresh listing is the
	// only authoritative source, and it may lag behind the writes above.
	var schema *StageSchema
	reread := func() error {
		fields, err := client.ListProjectFields(ctx, projectID)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("re-list project fields: %w", err))
		}
		field := findStageField(fields)
		if field == nil {
			return fmt.Errorf("field %q %w", StageFieldName, errNotVisible)
		}
		ids := make(map[string]string, len(field.Options))
		for _, opt := range field.Options {
			ids[opt.Name] = opt.ID
		}
		if _, ok := ids[DefaultStageOption]; !ok {
			return fmt.Errorf("option %q %w", DefaultStageOption, errNotVisible)
		}
		schema = &StageSchema{FieldID: field.ID, OptionIDs: ids}
		return nil
	}
	if err := backoff.Retry(reread, backoff.WithContext(newReconcileBackoff(), ctx)); err != nil {
		if errors.Is(err, errNotVisible) {
			return nil, fmt.Errorf("%w: %q has no option %q after reconciliation", ErrStageOptionMissing, StageFieldName, DefaultStageOption)
		}
		return nil, err
	}
	return schema, nil
}

// findStageField selects the canonical Stage field: the first single-select
// field in listing order whose name equals StageFieldName case-insensitively.
func findStageField(fields []github.Field) *github.Field {
	for i := range fields {
		if fields[i].IsSingleSelect() && strings.EqualFold(fields[i].Name, StageFieldName) {
			return &fields[i]
		}
	}
	return nil
}

func hasOption(options []github.Option, name string) bool {
	for _, opt := range options {
		if opt.Name == name {
			return true
		}
	}
	return false
}
