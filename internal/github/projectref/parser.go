// Package projectref parses template project references. A reference is
// either a bare project number ("18") or a full project board URL ending in
// /projects/<number>, e.g. https://github.com/orgs/acme/projects/18. The
// host is not validated so GitHub Enterprise URLs parse the same way.
package projectref

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Ref is a parsed template project reference. Owner is only populated when
// the reference was a full URL carrying an orgs/ or users/ path.
type Ref struct {
	Owner  string
	Number int
}

// Parse parses a project reference. It fails fast on malformed input so the
// run aborts before any remote call is made.
func Parse(ref string) (*Ref, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty project reference")
	}

	// Bare number form.
	if n, err := strconv.Atoi(ref); err == nil {
		if n <= 0 {
			return nil, fmt.Errorf("invalid project number: %d", n)
		}
		return &Ref{Number: n}, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid project reference %q: %w", ref, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid project reference %q: expected a project number or project URL", ref)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] != "projects" {
		return nil, fmt.Errorf("invalid project URL %q: expected path ending in /projects/<number>", ref)
	}

	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return nil, fmt.Errorf("invalid project number in URL %q: %w", ref, err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("invalid project number: %d", n)
	}

	out := &Ref{Number: n}
	// Owner is present in the canonical orgs/<login>/projects/<n> and
	// users/<login>/projects/<n> layouts.
	if len(parts) == 4 && (parts[0] == "orgs" || parts[0] == "users") {
		out.Owner = parts[1]
	}
	return out, nil
}
