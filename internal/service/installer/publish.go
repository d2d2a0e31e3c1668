package installer

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/desktop-packager/internal/config"
	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/logger"
	"github.com/oshokin/desktop-packager/internal/service/common"
	"github.com/oshokin/desktop-packager/internal/version"
)

// ManifestExtension is appended to the artifact name to form the manifest name.
const ManifestExtension = ".yaml"

// Manifest describes a published installer.
type Manifest struct {
	// Artifact is the installer file name.
	Artifact string `yaml:"artifact"`
	// Package is the distribution name of the wheel.
	Package string `yaml:"package"`
	// Version is the distribution version.
	Version string `yaml:"version"`
	// Platform is the target platform.
	Platform build.Platform `yaml:"platform"`
	// Checksum is the base64 encoded digest of the artifact.
	Checksum string `yaml:"checksum"`
	// ChecksumAlgorithm names the digest function.
	ChecksumAlgorithm string `yaml:"checksum_algorithm"`
	// Generator is the tool that produced the artifact.
	Generator string `yaml:"generator"`
	// BuiltBy identifies the machine and user.
	BuiltBy *common.Actor `yaml:"built_by,omitempty"`
	// BuiltAt is the publication time.
	BuiltAt time.Time `yaml:"built_at"`
}

// Release is what Publish needs to know about the artifact.
type Release struct {
	// Package is the distribution name.
	Package string
	// Version is the distribution version.
	Version string
	// Platform is the target platform.
	Platform build.Platform
}

// Publisher copies installers into the dist folder and writes their manifests.
type Publisher struct {
	now   func() time.Time
	actor func() (*common.Actor, error)
}

// NewPublisher returns a Publisher stamping manifests with the current time and actor.
func NewPublisher() *Publisher {
	return &Publisher{
		now:   time.Now,
		actor: common.DetectActor,
	}
}

// Publish copies artifact into distDir, verifying its checksum while writing,
// and stores a manifest next to it. It returns the published path.
func (p *Publisher) Publish(ctx context.Context, artifact, distDir string, release Release) (string, error) {
	checksum, err := common.FileChecksum(artifact)
	if err != nil {
		return "", fmt.Errorf("checksum %s: %w", artifact, err)
	}

	if err = os.MkdirAll(distDir, config.DefaultDirPermissions); err != nil {
		return "", fmt.Errorf("create %s: %w", distDir, err)
	}

	target := filepath.Join(distDir, filepath.Base(artifact))

	same, err := samePath(artifact, target)
	if err != nil {
		return "", err
	}

	if !same {
		if err = applyFile(artifact, target, checksum); err != nil {
			return "", err
		}
	}

	manifest := &Manifest{
		Artifact:          filepath.Base(target),
		Package:           release.Package,
		Version:           release.Version,
		Platform:          release.Platform,
		Checksum:          base64.StdEncoding.EncodeToString(checksum),
		ChecksumAlgorithm: common.DefaultChecksumFunction.String(),
		Generator:         version.Generator(),
		BuiltAt:           p.now().UTC(),
	}

	if manifest.BuiltBy, err = p.actor(); err != nil {
		logger.WarnKV(ctx, "Unable to detect build actor", "error", err)
	}

	contents, err := yaml.Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}

	manifestFile := target + ManifestExtension
	if err = os.WriteFile(manifestFile, contents, config.DefaultFilePermissions); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	logger.InfoKV(ctx, "Published installer", "path", target, "manifest", manifestFile)

	return target, nil
}

// applyFile replaces target with the contents of source, failing when the
// written bytes do not match checksum.
func applyFile(source, target string, checksum []byte) error {
	f, err := os.Open(filepath.Clean(source))
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}

	defer func() {
		_ = f.Close()
	}()

	if _, err = os.Stat(target); os.IsNotExist(err) {
		created, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("create %s: %w", target, err)
		}

		_ = created.Close()
	}

	err = goupdate.Apply(f, goupdate.Options{
		TargetPath: target,
		TargetMode: config.DefaultFilePermissions,
		Checksum:   checksum,
		Hash:       common.DefaultChecksumFunction,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", target, err)
	}

	if oldFile := target + ".old"; fileExists(oldFile) {
		_ = os.Remove(oldFile)
	}

	return nil
}

// samePath reports whether a and b name the same file.
func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", a, err)
	}

	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", b, err)
	}

	return absA == absB, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
