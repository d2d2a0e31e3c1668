package freeze

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/micromdm/plist"

	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/resolve"
)

// bundleInfo is the part of Contents/Info.plist used to verify a bundle.
type bundleInfo struct {
	CFBundleExecutable string
	CFBundleName       string
}

// macStrategies look for <AppName>.app directly under searchPath, then anywhere below it.
func macStrategies(searchPath, executable string, params *build.Parameters) []resolve.Strategy[string] {
	bundle := params.AppName + ".app"
	verify := func(path string) (string, error) {
		return verifyBundle(path, executable)
	}

	return []resolve.Strategy[string]{
		resolve.Named("expected app bundle", func(context.Context) (string, error) {
			return verify(filepath.Join(searchPath, bundle))
		}),
		resolve.Named("search for app bundle", func(ctx context.Context) (string, error) {
			return walkFor(ctx, searchPath, bundle, verify)
		}),
	}
}

// windowsStrategies look for the collection folder holding <executable>.exe,
// first directly under searchPath, then anywhere below it.
func windowsStrategies(searchPath, executable string, params *build.Parameters) []resolve.Strategy[string] {
	collection := params.CollectionName
	if collection == "" {
		collection = params.AppName
	}

	exe := executable + build.Windows.ExecutableSuffix()
	verify := func(path string) (string, error) {
		return verifyCollection(path, exe)
	}

	return []resolve.Strategy[string]{
		resolve.Named("expected collection folder", func(context.Context) (string, error) {
			return verify(filepath.Join(searchPath, collection))
		}),
		resolve.Named("search for collection folder", func(ctx context.Context) (string, error) {
			return walkFor(ctx, searchPath, collection, verify)
		}),
	}
}

// verifyBundle accepts an .app directory whose Info.plist, if present,
// names executable as CFBundleExecutable.
func verifyBundle(path, executable string) (string, error) {
	if err := requireDir(path); err != nil {
		return "", err
	}

	infoPath := filepath.Join(path, "Contents", "Info.plist")

	data, err := os.ReadFile(infoPath)
	if errors.Is(err, os.ErrNotExist) {
		return path, nil
	}

	if err != nil {
		return "", fmt.Errorf("read %s: %w", infoPath, err)
	}

	info, err := decodeBundleInfo(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", infoPath, err)
	}

	if info.CFBundleExecutable != "" && info.CFBundleExecutable != executable {
		return "", resolve.NotFoundf("%s launches %q, not %q", path, info.CFBundleExecutable, executable)
	}

	return path, nil
}

// decodeBundleInfo decodes a binary or XML property list.
func decodeBundleInfo(data []byte) (*bundleInfo, error) {
	var info bundleInfo

	if bytes.HasPrefix(data, []byte("bplist00")) {
		if err := plist.NewBinaryDecoder(bytes.NewReader(data)).Decode(&info); err != nil {
			return nil, err
		}

		return &info, nil
	}

	if err := plist.NewXMLDecoder(bytes.NewReader(data)).Decode(&info); err != nil {
		return nil, err
	}

	return &info, nil
}

// verifyCollection accepts a directory holding the executable file.
func verifyCollection(path, exe string) (string, error) {
	if err := requireDir(path); err != nil {
		return "", err
	}

	info, err := os.Stat(filepath.Join(path, exe))
	if err != nil || info.IsDir() {
		return "", resolve.NotFoundf("%s has no %s", path, exe)
	}

	return path, nil
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return resolve.NotFoundf("%s: %v", path, err)
	}

	if !info.IsDir() {
		return resolve.NotFoundf("%s is not a directory", path)
	}

	return nil
}

// walkFor walks root in lexical order and returns the first directory named
// name that verify accepts. Accepted or rejected candidates are not descended into.
func walkFor(ctx context.Context, root, name string, verify func(string) (string, error)) (string, error) {
	var found string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !d.IsDir() || path == root || d.Name() != name {
			return nil
		}

		result, verifyErr := verify(path)
		if verifyErr == nil {
			found = result

			return fs.SkipAll
		}

		if errors.Is(verifyErr, resolve.ErrNotFound) {
			return fs.SkipDir
		}

		return verifyErr
	})

	switch {
	case found != "":
		return found, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", resolve.NotFoundf("%s does not exist", root)
	case err != nil:
		return "", err
	default:
		return "", resolve.NotFoundf("no %s below %s", name, root)
	}
}
