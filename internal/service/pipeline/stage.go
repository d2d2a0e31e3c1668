package pipeline

import "fmt"

// Stage is a state the pipeline reaches when a step succeeds.
type Stage string

// Pipeline stages in execution order.
const (
	EnvPrepared             Stage = "EnvPrepared"
	SpecsBuilt              Stage = "SpecsBuilt"
	FreezeConfigRendered    Stage = "FreezeConfigRendered"
	Frozen                  Stage = "Frozen"
	FrozenFolderLocated     Stage = "FrozenFolderLocated"
	InstallerConfigRendered Stage = "InstallerConfigRendered"
	InstallerBuilt          Stage = "InstallerBuilt"
	ArtifactLocated         Stage = "ArtifactLocated"
	ArtifactPublished       Stage = "ArtifactPublished"
)

// Stages lists every stage in execution order.
func Stages() []Stage {
	return []Stage{
		EnvPrepared,
		SpecsBuilt,
		FreezeConfigRendered,
		Frozen,
		FrozenFolderLocated,
		InstallerConfigRendered,
		InstallerBuilt,
		ArtifactLocated,
		ArtifactPublished,
	}
}

// StageError reports the stage the pipeline failed to reach.
type StageError struct {
	// Stage is the state the failing step was trying to reach.
	Stage Stage
	// Err is the cause.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the cause.
func (e *StageError) Unwrap() error {
	return e.Err
}
