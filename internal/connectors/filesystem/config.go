package filesystem

import (
	"errors"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// ErrMissingPath indicates a vcard source config is missing the required
// "path" key.
var ErrMissingPath = errors.New("filesystem: missing required \"path\" config key")

// Config holds the parsed configuration for a vcard source: the directory
// holding one .vcf file per contact.
type Config struct {
	// Path is the directory scanned for .vcf files.
	Path string
}

// ParseConfig parses a source's config map into a Config struct.
func ParseConfig(source domain.Source) (*Config, error) {
	path, ok := source.Config["path"]
	if !ok || path == "" {
		return nil, ErrMissingPath
	}
	return &Config{Path: path}, nil
}
