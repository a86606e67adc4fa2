// Package config loads the tool's configuration from the environment. Every
// knob has a default; GHDEMO_* environment variables override.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all environment-overridable settings for one bootstrap run.
type Config struct {
	// Owner is the account under which the repository and project board are
	// created.
	Owner string

	// TemplateRepo is the template repository reference as owner/name.
	TemplateRepo string

	// TemplateProject is the template project reference: a bare project
	// number or a full project URL ending in /projects/<number>.
	TemplateProject string

	// IssueTemplate is the filename under .github/ISSUE_TEMPLATE used for
	// the starter issue. Creation falls back to an inline body when the
	// template cannot be fetched or applied.
	IssueTemplate string

	// StageSetFatal promotes a failure of the final stage assignment from a
	// logged warning to a run-aborting error.
	StageSetFatal bool

	// Debug enables debug logging regardless of the -v flag.
	Debug bool
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GHDEMO")
	v.AutomaticEnv()

	v.SetDefault("owner", "atlasbot")
	v.SetDefault("template_repo", "atlasbot/demo-template")
	v.SetDefault("template_project", "18")
	v.SetDefault("issue_template", "refine.md")
	v.SetDefault("stage_set_fatal", false)
	v.SetDefault("debug", false)

	cfg := &Config{
		Owner:           v.GetString("owner"),
		TemplateRepo:    v.GetString("template_repo"),
		TemplateProject: v.GetString("template_project"),
		IssueTemplate:   v.GetString("issue_template"),
		StageSetFatal:   v.GetBool("stage_set_fatal"),
		Debug:           v.GetBool("debug"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Owner == "" {
		return fmt.Errorf("owner must not be empty")
	}
	if owner, name := c.SplitTemplateRepo(); owner == "" || name == "" {
		return fmt.Errorf("template_repo %q is invalid: expected owner/name", c.TemplateRepo)
	}
	if c.TemplateProject == "" {
		return fmt.Errorf("template_project must not be empty")
	}
	return nil
}

// SplitTemplateRepo splits the owner/name template repository reference.
func (c *Config) SplitTemplateRepo() (owner, name string) {
	parts := strings.SplitN(c.TemplateRepo, "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}
