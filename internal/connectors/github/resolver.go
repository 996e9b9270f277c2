package github

import "strings"

// ResolveWebURL converts a github-tasks item URI to the issue's web URL.
// URIs without the github:// prefix yield "".
// github://owner/repo/issues/123 -> https://github.com/owner/repo/issues/123
func ResolveWebURL(uri string, _ map[string]any) string {
	if strings.HasPrefix(uri, "github://") {
		return "https://github.com/" + strings.TrimPrefix(uri, "github://")
	}
	return ""
}
