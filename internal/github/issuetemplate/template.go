// Package issuetemplate fetches and parses markdown issue templates from a
// repository's .github/ISSUE_TEMPLATE directory.
package issuetemplate

import (
	"context"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/atlasbot/gh-demo-bootstrap/internal/github"
)

// Template is a parsed markdown issue template: the YAML front matter
// metadata plus the markdown body below it.
type Template struct {
	Name   string    `yaml:"name"`
	About  string    `yaml:"about"`
	Title  string    `yaml:"title"`
	Labels labelList `yaml:"labels"`
	Body   string    `yaml:"-"`
}

// labelList accepts both front matter spellings GitHub allows: a YAML
// sequence or a comma-separated scalar.
type labelList []string

func (l *labelList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
	case yaml.ScalarNode:
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				*l = append(*l, item)
			}
		}
	default:
		return fmt.Errorf("labels: unsupported YAML node kind %d", value.Kind)
	}
	return nil
}

// Fetch retrieves a template file from the repository's
// .github/ISSUE_TEMPLATE directory and parses it.
func Fetch(ctx context.Context, client github.Client, owner, repo, name string) (*Template, error) {
	content, err := client.GetFileContent(ctx, owner, repo, path.Join(".github", "ISSUE_TEMPLATE", name))
	if err != nil {
		return nil, fmt.Errorf("fetch issue template %q: %w", name, err)
	}
	return Parse(content)
}

// Parse splits the YAML front matter from the markdown body. A file without
// front matter is treated as all body.
func Parse(content string) (*Template, error) {
	tmpl := &Template{}

	content = strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		tmpl.Body = strings.TrimSpace(content)
		return tmpl, nil
	}

	rest := content[strings.Index(content, "\n")+1:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return nil, fmt.Errorf("issue template front matter is not terminated")
	}
	header := rest[:idx]
	body := rest[idx+len("\n---"):]
	if nl := strings.Index(body, "\n"); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}

	if err := yaml.Unmarshal([]byte(header), tmpl); err != nil {
		return nil, fmt.Errorf("parse issue template front matter: %w", err)
	}
	tmpl.Body = strings.TrimSpace(body)
	return tmpl, nil
}
