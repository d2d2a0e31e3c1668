package build

import "time"

// RunState describes the packaging run that owns a build directory.
type RunState struct {
	// PID is the process id of the run.
	PID int
	// Executable is the process name, used to tell a live run from a reused PID.
	Executable string
	// Stage is the last stage the run entered.
	Stage string
	// PackageFile is the wheel being packaged.
	PackageFile string
	// StartedAt is when the run began.
	StartedAt time.Time
	// UpdatedAt is when the stage was last recorded.
	UpdatedAt time.Time
}
