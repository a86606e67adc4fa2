package bootstrap

// State carries the run-scoped values produced by one stage and consumed by
// later stages. Each stage writes only its own outputs; nothing here is
// persisted beyond the run.
type State struct {
	// repository creation
	RepoOwner string
	RepoName  string
	RepoURL   string

	// project copy
	ProjectID     string
	ProjectNumber int
	ProjectURL    string

	// field reconciliation
	StageFieldID    string
	BacklogOptionID string

	// issue seeding
	IssueNumber int
	IssueNodeID string
	IssueURL    string

	// linking
	ProjectItemID string
	// StageSetFailed records a swallowed best-effort stage assignment
	// failure so the summary can surface it.
	StageSetFailed bool
}
