package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/oshokin/desktop-packager/internal/config"
	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/logger"
	"github.com/oshokin/desktop-packager/internal/platform"
	"github.com/oshokin/desktop-packager/internal/repository/run"
	"github.com/oshokin/desktop-packager/internal/service/environment"
	"github.com/oshokin/desktop-packager/internal/service/freeze"
	"github.com/oshokin/desktop-packager/internal/service/installer"
	"github.com/oshokin/desktop-packager/internal/toolrun"
	"github.com/oshokin/desktop-packager/internal/wheel"
)

// EnvironmentPreparer creates the package environment.
type EnvironmentPreparer interface {
	Prepare(ctx context.Context, platform build.Platform, params *build.Parameters) error
}

// Freezer runs the freeze tool on a rendered spec file.
type Freezer interface {
	Freeze(ctx context.Context, platform build.Platform, params *build.Parameters, specsFile string) error
}

// Publisher copies the installer into the dist folder.
type Publisher interface {
	Publish(ctx context.Context, artifact, distDir string, release installer.Release) (string, error)
}

// Options contains inputs for the pipeline entry point.
// Only Params is required; every other field has a default.
type Options struct {
	// Params are the packaging inputs.
	Params *build.Parameters
	// Platform is the target platform; empty means the current operating system.
	Platform build.Platform
	// Runner executes external tools.
	Runner toolrun.Runner
	// Registry provides the platform strategies.
	Registry *platform.Registry
	// Environment prepares the package environment.
	Environment EnvironmentPreparer
	// Freezer runs PyInstaller.
	Freezer Freezer
	// Publisher publishes the installer.
	Publisher Publisher
	// Runs guards the build directory against concurrent runs.
	Runs run.Repository
}

// Result describes what a successful run produced.
type Result struct {
	// Platform is the platform the installer was built for.
	Platform build.Platform
	// SpecsFile is the rendered freeze spec.
	SpecsFile string
	// FrozenApplication is the folder produced by the freeze tool.
	FrozenApplication string
	// ConfigFile is the rendered installer config.
	ConfigFile string
	// Artifact is the installer cpack produced.
	Artifact string
	// Published is the installer copied into the dist folder.
	Published string
}

// runner executes one packaging job.
// It is unexported; callers should use Run, which fills in the defaults.
type runner struct {
	params      *build.Parameters
	platform    build.Platform
	entry       platform.Entry
	environment EnvironmentPreparer
	freezer     Freezer
	publisher   Publisher
	runs        run.Repository
	state       *build.RunState
	specs       *build.SpecsData
	result      *Result
}

// errNoParameters is returned when Run is called without parameters.
var errNoParameters = errors.New("packaging parameters are required")

// Run executes the packaging pipeline.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "pipeline")

	r, err := newRunner(opts)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithKV(ctx, "platform", r.platform)

	if err = r.acquire(ctx); err != nil {
		return nil, err
	}

	defer r.release(ctx)

	if err = r.run(ctx); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Packaging completed", "installer", r.result.Published)

	return r.result, nil
}

// newRunner fills in the defaults of opts.
func newRunner(opts *Options) (*runner, error) {
	if opts == nil || opts.Params == nil {
		return nil, errNoParameters
	}

	// Defaults go into a copy of the caller's parameters.
	params := new(build.Parameters)
	*params = *opts.Params

	if params.AppName == "" {
		params.AppName = config.DefaultAppName
	}

	target := opts.Platform
	if target == "" {
		detected, err := platform.Detect(runtime.GOOS)
		if err != nil {
			return nil, err
		}

		target = detected
	}

	toolRunner := opts.Runner
	if toolRunner == nil {
		toolRunner = &toolrun.ExecRunner{}
	}

	registry := opts.Registry
	if registry == nil {
		registry = platform.Default(platform.Deps{Runner: toolRunner, PackageEnv: params.PackageEnv()})
	}

	entry, err := registry.Lookup(target)
	if err != nil {
		return nil, err
	}

	r := &runner{
		params:      params,
		platform:    target,
		entry:       entry,
		environment: opts.Environment,
		freezer:     opts.Freezer,
		publisher:   opts.Publisher,
		runs:        opts.Runs,
		result:      &Result{Platform: target},
	}

	if r.environment == nil {
		r.environment = environment.New(toolRunner)
	}

	if r.freezer == nil {
		r.freezer = freeze.NewFreezer(toolRunner)
	}

	if r.publisher == nil {
		r.publisher = installer.NewPublisher()
	}

	if r.runs == nil {
		r.runs = run.NewFileRepository(params.BuildPath)
	}

	return r, nil
}

// acquire claims the build directory for this process.
func (r *runner) acquire(ctx context.Context) error {
	if err := os.MkdirAll(r.params.BuildPath, config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create build path: %w", err)
	}

	now := time.Now()
	r.state = &build.RunState{
		PID:         os.Getpid(),
		Executable:  run.CurrentExecutable(),
		PackageFile: r.params.PackageFile,
		StartedAt:   now,
		UpdatedAt:   now,
	}

	return r.runs.Acquire(ctx, r.state)
}

// release removes the run-state file.
func (r *runner) release(ctx context.Context) {
	if err := r.runs.Remove(ctx); err != nil {
		logger.WarnKV(ctx, "Unable to remove run state", "error", err)
	}
}

// run executes the stages in order.
func (r *runner) run(ctx context.Context) error {
	steps := []struct {
		stage Stage
		do    func(ctx context.Context) error
	}{
		{EnvPrepared, r.prepareEnvironment},
		{SpecsBuilt, r.buildSpecs},
		{FreezeConfigRendered, r.renderFreezeConfig},
		{Frozen, r.freeze},
		{FrozenFolderLocated, r.locateFrozenApplication},
		{InstallerConfigRendered, r.generateInstallerConfig},
		{InstallerBuilt, r.buildInstaller},
		{ArtifactLocated, r.checkArtifact},
		{ArtifactPublished, r.publish},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: step.stage, Err: err}
		}

		r.enter(ctx, step.stage)

		if err := step.do(ctx); err != nil {
			stage := step.stage
			if stage == InstallerBuilt && errors.Is(err, installer.ErrNoArtifact) {
				stage = ArtifactLocated
			}

			logger.ErrorKV(ctx, "Stage failed", "stage", stage, "error", err)

			return &StageError{Stage: stage, Err: err}
		}

		logger.InfoKV(ctx, "Stage completed", "stage", step.stage)
	}

	return nil
}

// enter records stage in the run-state file.
func (r *runner) enter(ctx context.Context, stage Stage) {
	r.state.Stage = string(stage)
	r.state.UpdatedAt = time.Now()

	if err := r.runs.Save(ctx, r.state); err != nil {
		logger.WarnKV(ctx, "Unable to record run stage", "stage", stage, "error", err)
	}
}

func (r *runner) prepareEnvironment(ctx context.Context) error {
	return r.environment.Prepare(ctx, r.platform, r.params)
}

func (r *runner) buildSpecs(ctx context.Context) (err error) {
	r.specs, err = r.entry.Generator.BuildSpecs(ctx, r.params)

	return err
}

// renderFreezeConfig writes the rendered freeze spec into the build path.
func (r *runner) renderFreezeConfig(ctx context.Context) error {
	text, err := r.entry.Generator.GenerateFreezeConfig(ctx, r.specs)
	if err != nil {
		return err
	}

	specsFile := r.params.SpecsFile()
	if err = os.MkdirAll(filepath.Dir(specsFile), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(specsFile), err)
	}

	if err = os.WriteFile(specsFile, []byte(text), config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write freeze spec: %w", err)
	}

	logger.DebugKV(ctx, "Wrote freeze spec", "path", specsFile)

	r.result.SpecsFile = specsFile

	return nil
}

func (r *runner) freeze(ctx context.Context) error {
	return r.freezer.Freeze(ctx, r.platform, r.params, r.result.SpecsFile)
}

func (r *runner) locateFrozenApplication(ctx context.Context) (err error) {
	r.result.FrozenApplication, err = r.entry.Generator.LocateFrozenApplication(ctx, r.params.DistPath, r.params)

	return err
}

func (r *runner) generateInstallerConfig(ctx context.Context) (err error) {
	r.result.ConfigFile, err = r.entry.Packager.GenerateConfigFile(ctx, r.result.FrozenApplication, r.params)

	return err
}

func (r *runner) buildInstaller(ctx context.Context) (err error) {
	r.result.Artifact, err = r.entry.Packager.CreateSystemPackage(ctx, r.result.ConfigFile, r.params.CPackBuildPath())

	return err
}

// checkArtifact confirms the located installer is a regular file.
func (r *runner) checkArtifact(ctx context.Context) error {
	info, err := os.Stat(r.result.Artifact)
	if err != nil {
		return fmt.Errorf("installer artifact: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("installer artifact %s: %w", r.result.Artifact, installer.ErrNoArtifact)
	}

	logger.InfoKV(ctx, "Located installer", "path", r.result.Artifact, "size", info.Size())

	return nil
}

func (r *runner) publish(ctx context.Context) error {
	md, err := wheel.ReadMetadata(r.params.PackageFile)
	if err != nil {
		return err
	}

	r.result.Published, err = r.publisher.Publish(ctx, r.result.Artifact, r.params.DistPath, installer.Release{
		Package:  md.Name,
		Version:  md.Version,
		Platform: r.platform,
	})

	return err
}
