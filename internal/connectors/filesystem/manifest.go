package filesystem

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
)

const vcardExt = ".vcf"

// hashContent renders a vCard file's content as the Revision a sync peer
// compares across syncs: a new hash means the file changed, no parsing of
// vCard fields required (spec.md's vCard-parsing Non-goal).
func hashContent(content []byte) domain.Revision {
	sum := sha256.Sum256(content)
	return domain.Revision(fmt.Sprintf("%x", sum))
}

// luidToPath maps a LUID to its .vcf file, rejecting anything that could
// escape the source's root directory.
func luidToPath(root string, luid domain.LUID) (string, error) {
	name := luid.String()
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return "", fmt.Errorf("filesystem: invalid item LUID %q", luid)
	}
	return filepath.Join(root, name+vcardExt), nil
}

// scanManifest walks root and returns the current LUID -> Revision state:
// one entry per .vcf file, keyed by filename stem.
func scanManifest(root string) (map[domain.LUID]domain.Revision, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: scan %s: %w", root, err)
	}

	manifest := make(map[domain.LUID]domain.Revision, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != vcardExt {
			continue
		}
		luid := domain.LUID(strings.TrimSuffix(entry.Name(), vcardExt))
		content, err := os.ReadFile(filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("filesystem: read %s: %w", entry.Name(), err)
		}
		manifest[luid] = hashContent(content)
	}
	return manifest, nil
}
