package caldav

import (
	"errors"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

// ErrMissingURL is returned when a caldav source omits its required "url"
// config key.
var ErrMissingURL = errors.New("caldav: missing required \"url\" config key")

// Config holds the parsed configuration for a caldav source: the CalDAV
// collection URL to synchronise against.
type Config struct {
	// URL is the CalDAV calendar collection endpoint, e.g.
	// "https://caldav.example.com/calendars/alice/work/".
	URL string
}

// ParseConfig extracts configuration from a Source. "url" is required.
func ParseConfig(source domain.Source) (*Config, error) {
	url, ok := source.Config["url"]
	if !ok || url == "" {
		return nil, ErrMissingURL
	}
	return &Config{URL: url}, nil
}
