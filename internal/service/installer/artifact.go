package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/desktop-packager/internal/resolve"
)

// LocateInstallerArtifact returns the first file in dir ending in ext.
// Subdirectories are not searched.
func LocateInstallerArtifact(ctx context.Context, dir, ext string) (string, error) {
	return resolve.First[string](ctx, ext+" installer", func(context.Context) (string, error) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return "", resolve.NotFoundf("%s does not exist", dir)
			}

			return "", fmt.Errorf("list %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
				continue
			}

			return filepath.Join(dir, entry.Name()), nil
		}

		return "", resolve.NotFoundf("no %s file in %s", ext, dir)
	})
}
