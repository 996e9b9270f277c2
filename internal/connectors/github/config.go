package github

import (
	"errors"
	"strings"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// ErrMissingRepository indicates a github-tasks source config is missing
// the required "repository" key.
var ErrMissingRepository = errors.New("github: missing required \"repository\" config key")

// Config holds the parsed configuration for a github-tasks source: the
// single repository whose issues are synchronised as items.
type Config struct {
	// Owner is the repository owner (user or organisation) login.
	Owner string

	// Repo is the repository name.
	Repo string
}

// ParseConfig parses a source's config map into a Config struct. The
// "repository" key must be in "owner/repo" form.
func ParseConfig(source domain.Source) (*Config, error) {
	repository, ok := source.Config["repository"]
	if !ok || repository == "" {
		return nil, ErrMissingRepository
	}

	owner, repo, found := strings.Cut(repository, "/")
	if !found || owner == "" || repo == "" {
		return nil, ErrMissingRepository
	}

	return &Config{Owner: owner, Repo: repo}, nil
}
