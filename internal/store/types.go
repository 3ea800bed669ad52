package store

import "time"

// OperationKind names what an operation did to the live root.
type OperationKind string

// OperationStatus is the lifecycle state of a journaled operation.
type OperationStatus string

const (
	// OperationInstall is a plain install into a missing or empty root.
	OperationInstall OperationKind = "install"
	// OperationInstallUpgrade is an install over a populated root.
	OperationInstallUpgrade OperationKind = "install-upgrade"
	// OperationUpdate replaces a recorded revision.
	OperationUpdate OperationKind = "update"
)

const (
	OperationStarted OperationStatus = "started"
	OperationApplied OperationStatus = "applied"
	OperationFailed  OperationStatus = "failed"
)

// Operation is one journaled install or update.
// A row left in OperationStarted means the process died mid-operation.
type Operation struct {
	ID            int64           `json:"id"`
	Kind          OperationKind   `json:"kind"`
	Package       string          `json:"package"`
	FromVersion   string          `json:"from_version,omitempty"`
	FromReference string          `json:"from_reference,omitempty"`
	ToVersion     string          `json:"to_version"`
	ToReference   string          `json:"to_reference,omitempty"`
	Status        OperationStatus `json:"status"`
	ScratchDir    string          `json:"scratch_dir,omitempty"`
	DeletedCount  int             `json:"deleted_count"`
	FailureStep   string          `json:"failure_step,omitempty"`
	FailureError  string          `json:"failure_error,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at,omitempty"`
}
