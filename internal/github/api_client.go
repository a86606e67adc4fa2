package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	gh "github.com/google/go-github/v68/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// callTimeout bounds every remote call so a stalled API request surfaces as
// a context deadline error instead of hanging the run.
const callTimeout = 30 * time.Second

// APIClient implements the Client interface against GitHub, using the
// GraphQL API for Projects v2 operations and the REST API for repository,
// label and issue operations.
type APIClient struct {
	gql  *githubv4.Client
	rest *gh.Client
}

// NewAPIClient creates a client authenticated via the GITHUB_TOKEN
// environment variable. With debug enabled, all HTTP traffic is dumped to
// the debug log.
func NewAPIClient(debug bool) (*APIClient, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable not set")
	}

	src := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(context.Background(), src)

	if debug {
		httpClient.Transport = &debugTransport{
			transport: httpClient.Transport,
		}
	}

	return &APIClient{
		gql:  githubv4.NewClient(httpClient),
		rest: gh.NewClient(httpClient),
	}, nil
}

// CreateRepoFromTemplate implements the Client interface.
func (c *APIClient) CreateRepoFromTemplate(ctx context.Context, templateOwner, templateRepo, owner, name string) (*Repo, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req := &gh.TemplateRepoRequest{
		Name:    gh.Ptr(name),
		Owner:   gh.Ptr(owner),
		Private: gh.Ptr(false),
	}
	repo, _, err := c.rest.Repositories.CreateFromTemplate(ctx, templateOwner, templateRepo, req)
	if err != nil {
		return nil, fmt.Errorf("create repository from template: %w", err)
	}

	return &Repo{
		Owner: owner,
		Name:  name,
		URL:   repo.GetHTMLURL(),
	}, nil
}

// projectFieldNode is the union node shape returned by the fields listing.
// Only single-select fields carry options; every other field type is
// represented through the common fragment.
type projectFieldNode struct {
	TypeName string `graphql:"__typename"`
	Common   struct {
		ID   string
		Name string
	} `graphql:"... on ProjectV2FieldCommon"`
	SingleSelect struct {
		ID      string
		Name    string
		Options []struct {
			ID          string
			Name        string
			Color       string
			Description string
		}
	} `graphql:"... on ProjectV2SingleSelectField"`
}

// CopyProject implements the Client interface. It resolves the source
// project's node id and the target owner's node id, then copies the board
// including its field schema.
func (c *APIClient) CopyProject(ctx context.Context, sourceOwner string, sourceNumber int, targetOwner, title string) (*Project, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	sourceID, err := c.resolveProjectID(ctx, sourceOwner, sourceNumber)
	if err != nil {
		return nil, err
	}
	ownerID, err := c.resolveOwnerID(ctx, targetOwner)
	if err != nil {
		return nil, err
	}

	var m struct {
		CopyProjectV2 struct {
			ProjectV2 struct {
				ID     string
				Number int
				Title  string
				URL    string
			}
		} `graphql:"copyProjectV2(input: $input)"`
	}
	input := githubv4.CopyProjectV2Input{
		ProjectID: githubv4.ID(sourceID),
		OwnerID:   githubv4.ID(ownerID),
		Title:     githubv4.String(title),
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return nil, fmt.Errorf("copy project: %w", err)
	}

	p := m.CopyProjectV2.ProjectV2
	return &Project{
		ID:     p.ID,
		Number: p.Number,
		Title:  p.Title,
		URL:    p.URL,
	}, nil
}

// resolveProjectID finds the node id of a project by owner login and
// number. The owner may be either an organization or a user; both fragments
// are queried and whichever resolves wins.
func (c *APIClient) resolveProjectID(ctx context.Context, owner string, number int) (string, error) {
	var q struct {
		RepositoryOwner struct {
			Organization struct {
				ProjectV2 struct {
					ID string
				} `graphql:"projectV2(number: $number)"`
			} `graphql:"... on Organization"`
			User struct {
				ProjectV2 struct {
					ID string
				} `graphql:"projectV2(number: $number)"`
			} `graphql:"... on User"`
		} `graphql:"repositoryOwner(login: $login)"`
	}
	variables := map[string]interface{}{
		"login":  githubv4.String(owner),
		"number": githubv4.Int(number),
	}
	if err := c.gql.Query(ctx, &q, variables); err != nil {
		return "", fmt.Errorf("resolve project %s/%d: %w", owner, number, err)
	}

	if id := q.RepositoryOwner.Organization.ProjectV2.ID; id != "" {
		return id, nil
	}
	if id := q.RepositoryOwner.User.ProjectV2.ID; id != "" {
		return id, nil
	}
	return "", fmt.Errorf("project %d not found for owner %s", number, owner)
}

func (c *APIClient) resolveOwnerID(ctx context.Context, owner string) (string, error) {
	var q struct {
		RepositoryOwner struct {
			ID string
		} `graphql:"repositoryOwner(login: $login)"`
	}
	variables := map[string]interface{}{
		"login": githubv4.String(owner),
	}
	if err := c.gql.Query(ctx, &q, variables); err != nil {
		return "", fmt.Errorf("resolve owner %s: %w", owner, err)
	}
	if q.RepositoryOwner.ID == "" {
		return "", fmt.Errorf("owner %s not found", owner)
	}
	return q.RepositoryOwner.ID, nil
}

// ListProjectFields implements the Client interface. All union-node
// handling lives here; callers only ever see the canonical []Field shape.
func (c *APIClient) ListProjectFields(ctx context.Context, projectID string) ([]Field, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var q struct {
		Node struct {
			ProjectV2 struct {
				Fields struct {
					Nodes []projectFieldNode
				} `graphql:"fields(first: 100)"`
			} `graphql:"... on ProjectV2"`
		} `graphql:"node(id: $id)"`
	}
	variables := map[string]interface{}{
		"id": githubv4.ID(projectID),
	}
	if err := c.gql.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("list project fields: %w", err)
	}

	nodes := q.Node.ProjectV2.Fields.Nodes
	fields := make([]Field, 0, len(nodes))
	for _, node := range nodes {
		field := Field{
			ID:   node.Common.ID,
			Name: node.Common.Name,
			Type: node.TypeName,
		}
		if node.TypeName == "ProjectV2SingleSelectField" {
			field.ID = node.SingleSelect.ID
			field.Name = node.SingleSelect.Name
			for _, opt := range node.SingleSelect.Options {
				field.Options = append(field.Options, Option{
					ID:          opt.ID,
					Name:        opt.Name,
					Color:       opt.Color,
					Description: opt.Description,
				})
			}
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// CreateSingleSelectField implements the Client interface.
func (c *APIClient) CreateSingleSelectField(ctx context.Context, projectID, name string, options []string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var m struct {
		CreateProjectV2Field struct {
			ClientMutationID string
		} `graphql:"createProjectV2Field(input: $input)"`
	}
	opts := make([]githubv4.ProjectV2SingleSelectFieldOptionInput, 0, len(options))
	for _, optionName := range options {
		opts = append(opts, optionInput(Option{Name: optionName}))
	}
	input := githubv4.CreateProjectV2FieldInput{
		ProjectID:           githubv4.ID(projectID),
		DataType:            githubv4.ProjectV2CustomFieldTypeSingleSelect,
		Name:                githubv4.String(name),
		SingleSelectOptions: &opts,
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("create field %q: %w", name, err)
	}
	return nil
}

// UpdateProjectV2FieldInput is the input for the updateProjectV2Field
// mutation. githubv4 does not generate this input type; the Mutate call
// derives the GraphQL input type name from this local definition, so the Go
// type name must match the schema's exactly.
type UpdateProjectV2FieldInput struct {
	FieldID             githubv4.ID                                       `json:"fieldId"`
	SingleSelectOptions *[]githubv4.ProjectV2SingleSelectFieldOptionInput `json:"singleSelectOptions,omitempty"`
}

// AddFieldOption implements the Client interface. The GraphQL API has no
// append operation for options; updateProjectV2Field replaces the whole
// list, so the existing options are resent ahead of the new one, keeping
// their color and description.
func (c *APIClient) AddFieldOption(ctx context.Context, fieldID, name string, existing []Option) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var m struct {
		UpdateProjectV2Field struct {
			ClientMutationID string
		} `graphql:"updateProjectV2Field(input: $input)"`
	}
	opts := make([]githubv4.ProjectV2SingleSelectFieldOptionInput, 0, len(existing)+1)
	for _, opt := range existing {
		opts = append(opts, optionInput(opt))
	}
	opts = append(opts, optionInput(Option{Name: name}))
	input := UpdateProjectV2FieldInput{
		FieldID:             githubv4.ID(fieldID),
		SingleSelectOptions: &opts,
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("add option %q: %w", name, err)
	}
	return nil
}

// optionInput converts an option to its mutation input, defaulting newly
// created options to gray with an empty description.
func optionInput(opt Option) githubv4.ProjectV2SingleSelectFieldOptionInput {
	color := githubv4.ProjectV2SingleSelectFieldOptionColorGray
	if opt.Color != "" {
		color = githubv4.ProjectV2SingleSelectFieldOptionColor(opt.Color)
	}
	return githubv4.ProjectV2SingleSelectFieldOptionInput{
		Name:        githubv4.String(opt.Name),
		Color:       color,
		Description: githubv4.String(opt.Description),
	}
}

// CreateLabel implements the Client interface. An already-existing label is
// success, not an error.
func (c *APIClient) CreateLabel(ctx context.Context, owner, repo string, label Label) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, _, err := c.rest.Issues.CreateLabel(ctx, owner, repo, &gh.Label{
		Name:        gh.Ptr(label.Name),
		Color:       gh.Ptr(label.Color),
		Description: gh.Ptr(label.Description),
	})
	if err != nil {
		if isAlreadyExists(err) {
			slog.Debug("label already exists", "label", label.Name)
			return nil
		}
		return fmt.Errorf("create label %q: %w", label.Name, err)
	}
	return nil
}

// isAlreadyExists reports whether a REST error is a validation failure with
// the already_exists code.
func isAlreadyExists(err error) bool {
	var gerr *gh.ErrorResponse
	if !errors.As(err, &gerr) {
		return false
	}
	for _, e := range gerr.Errors {
		if e.Code == "already_exists" {
			return true
		}
	}
	return false
}

// CreateIssue implements the Client interface.
func (c *APIClient) CreateIssue(ctx context.Context, owner, repo string, req IssueRequest) (*Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	labels := req.Labels
	issue, _, err := c.rest.Issues.Create(ctx, owner, repo, &gh.IssueRequest{
		Title:  gh.Ptr(req.Title),
		Body:   gh.Ptr(req.Body),
		Labels: &labels,
	})
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	return &Issue{
		Number: issue.GetNumber(),
		NodeID: issue.GetNodeID(),
		URL:    issue.GetHTMLURL(),
		Body:   issue.GetBody(),
	}, nil
}

// GetIssueBody implements the Client interface.
func (c *APIClient) GetIssueBody(ctx context.Context, owner, repo string, number int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	issue, _, err := c.rest.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return "", fmt.Errorf("get issue #%d: %w", number, err)
	}
	return issue.GetBody(), nil
}

// UpdateIssueBody implements the Client interface.
func (c *APIClient) UpdateIssueBody(ctx context.Context, owner, repo string, number int, body string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, _, err := c.rest.Issues.Edit(ctx, owner, repo, number, &gh.IssueRequest{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("update issue #%d body: %w", number, err)
	}
	return nil
}

// AddIssueToProject implements the Client interface.
func (c *APIClient) AddIssueToProject(ctx context.Context, projectID, issueNodeID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var m struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string
			}
		} `graphql:"addProjectV2ItemById(input: $input)"`
	}
	input := githubv4.AddProjectV2ItemByIdInput{
		ProjectID: githubv4.ID(projectID),
		ContentID: githubv4.ID(issueNodeID),
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return "", fmt.Errorf("add issue to project: %w", err)
	}
	return m.AddProjectV2ItemByID.Item.ID, nil
}

// SetItemFieldValue implements the Client interface.
func (c *APIClient) SetItemFieldValue(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var m struct {
		UpdateProjectV2ItemFieldValue struct {
			ClientMutationID string
		} `graphql:"updateProjectV2ItemFieldValue(input: $input)"`
	}
	option := githubv4.String(optionID)
	input := githubv4.UpdateProjectV2ItemFieldValueInput{
		ProjectID: githubv4.ID(projectID),
		ItemID:    githubv4.ID(itemID),
		FieldID:   githubv4.ID(fieldID),
		Value: githubv4.ProjectV2FieldValue{
			SingleSelectOptionID: &option,
		},
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("set item field value: %w", err)
	}
	return nil
}

// GetFileContent implements the Client interface.
func (c *APIClient) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	file, _, _, err := c.rest.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return "", fmt.Errorf("get contents of %s: %w", path, err)
	}
	if file == nil {
		return "", fmt.Errorf("%s is not a file", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode contents of %s: %w", path, err)
	}
	return content, nil
}
