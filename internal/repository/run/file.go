package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/go-ps"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/desktop-packager/internal/config"
	"github.com/oshokin/desktop-packager/internal/domain/build"
	"github.com/oshokin/desktop-packager/internal/logger"
)

// StateFilename is the name of the run-state file inside the build directory.
const StateFilename = ".desktop-packager-run.json"

// Repository defines persistence operations for the run state.
type Repository interface {
	Acquire(ctx context.Context, state *build.RunState) error
	Load(ctx context.Context) (*build.RunState, error)
	Save(ctx context.Context, state *build.RunState) error
	Remove(ctx context.Context) error
}

var (
	// ErrNotFound is returned when the state file does not exist.
	ErrNotFound = errors.New("run state not found")

	// ErrRunInProgress is returned by Acquire while another live process owns the state file.
	ErrRunInProgress = errors.New("another packaging run is using this build directory")
)

// ProcessChecker reports whether pid is alive and runs executable.
// An empty executable matches any process.
type ProcessChecker func(pid int, executable string) (bool, error)

// FileRepository persists the run state as protobuf JSON on disk.
type FileRepository struct {
	// path is the filesystem location of the state file.
	path string
	// alive checks whether a recorded process still runs.
	alive ProcessChecker
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// NewFileRepository creates a repository for the state file in buildPath.
func NewFileRepository(buildPath string) *FileRepository {
	return &FileRepository{
		path:  filepath.Join(filepath.Clean(buildPath), StateFilename),
		alive: IsProcessAlive,
	}
}

// WithProcessChecker replaces the liveness check.
func (r *FileRepository) WithProcessChecker(alive ProcessChecker) *FileRepository {
	r.alive = alive

	return r
}

// Path returns the state file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Acquire records state as the owner of the build directory.
// A missing state file is created exclusively, so of two runs starting
// together only one wins. It fails with ErrRunInProgress if the file names
// another live process; a state left behind by a dead process is replaced.
func (r *FileRepository) Acquire(ctx context.Context, state *build.RunState) error {
	created, err := r.create(state)
	if err != nil || created {
		return err
	}

	existing, err := r.Load(ctx)

	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		logger.WarnKV(ctx, "Unreadable run state, replacing it", "path", r.path, "error", err)
	case existing.PID != state.PID:
		if err = r.checkOwner(existing); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Replacing stale run state", "pid", existing.PID, "stage", existing.Stage)
	}

	if err = r.Save(ctx, state); err != nil {
		return err
	}

	// Two runs replacing the same stale file both write it; the last one owns it.
	current, err := r.Load(ctx)
	if err != nil {
		return err
	}

	if current.PID != state.PID {
		return r.checkOwner(current)
	}

	return nil
}

// checkOwner fails with ErrRunInProgress if the process owning existing still runs.
func (r *FileRepository) checkOwner(existing *build.RunState) error {
	alive, err := r.alive(existing.PID, existing.Executable)
	if err != nil {
		return fmt.Errorf("check process %d: %w", existing.PID, err)
	}

	if alive {
		return fmt.Errorf("%w (pid %d, stage %q, started %s)",
			ErrRunInProgress, existing.PID, existing.Stage, existing.StartedAt.Format(time.RFC3339))
	}

	return nil
}

// create writes state only if no state file exists yet.
// The contents are linked into place whole, so a concurrent reader never
// sees a partial file.
func (r *FileRepository) create(state *build.RunState) (bool, error) {
	data, err := encode(state)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp, err := r.writeTemp(data)
	if err != nil {
		return false, err
	}

	defer func() {
		_ = os.Remove(tmp)
	}()

	if err = os.Link(tmp, r.path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}

		return false, fmt.Errorf("create run state: %w", err)
	}

	return true, nil
}

// writeTemp writes data to a new file next to the state file.
func (r *FileRepository) writeTemp(data []byte) (string, error) {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
		return "", fmt.Errorf("create build directory: %w", err)
	}

	f, err := os.CreateTemp(dir, StateFilename+".*")
	if err != nil {
		return "", fmt.Errorf("write run state: %w", err)
	}

	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(f.Name())

		return "", fmt.Errorf("write run state: %w", err)
	}

	return f.Name(), nil
}

// Load reads the state from disk.
func (r *FileRepository) Load(_ context.Context) (*build.RunState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read run state: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode run state: %w", err)
	}

	return fromStruct(&document), nil
}

// Save writes the state to disk, creating the build directory if needed.
// The file is replaced by rename, so readers see either the old or the new state.
func (r *FileRepository) Save(_ context.Context, state *build.RunState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp, err := r.writeTemp(data)
	if err != nil {
		return err
	}

	if err = os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("write run state: %w", err)
	}

	return nil
}

// Remove deletes the state file. A missing file is not an error.
func (r *FileRepository) Remove(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove run state: %w", err)
	}

	return nil
}

// IsProcessAlive looks pid up in the process table.
func IsProcessAlive(pid int, executable string) (bool, error) {
	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, err
	}

	if process == nil {
		return false, nil
	}

	return executable == "" || process.Executable() == executable, nil
}

// CurrentExecutable returns the process name of the running program as the
// process table reports it, or an empty string if it cannot be determined.
func CurrentExecutable() string {
	process, err := ps.FindProcess(os.Getpid())
	if err != nil || process == nil {
		return ""
	}

	return process.Executable()
}

func encode(state *build.RunState) ([]byte, error) {
	document, err := toStruct(state)
	if err != nil {
		return nil, fmt.Errorf("encode run state: %w", err)
	}

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("encode run state: %w", err)
	}

	return data, nil
}

func toStruct(state *build.RunState) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"pid":          state.PID,
		"executable":   state.Executable,
		"stage":        state.Stage,
		"package_file": state.PackageFile,
		"started_at":   formatTime(state.StartedAt),
		"updated_at":   formatTime(state.UpdatedAt),
	})
}

func fromStruct(document *structpb.Struct) *build.RunState {
	fields := document.GetFields()

	return &build.RunState{
		PID:         int(fields["pid"].GetNumberValue()),
		Executable:  fields["executable"].GetStringValue(),
		Stage:       fields["stage"].GetStringValue(),
		PackageFile: fields["package_file"].GetStringValue(),
		StartedAt:   parseTime(fields["started_at"].GetStringValue()),
		UpdatedAt:   parseTime(fields["updated_at"].GetStringValue()),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}

	return t
}
