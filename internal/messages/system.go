package messages

// System messages for processes, version control, storage, and locking.
const (
	ProcessCommandRequired        = "command is required"
	ProcessCommandFailedFmt       = "%s (in %s) failed: %v"
	ProcessCommandFailedStderrFmt = "%s (in %s) failed: %v: %s"

	ChangeSetRunnerRequired = "change set resolver requires a command runner"
	ChangeSetFetchFailedFmt = "failed to fetch %s: %w"
	ChangeSetDiffFailedFmt  = "failed to diff %s..%s: %w"

	SourceDirRequired        = "staging directory is required"
	SourceRunnerRequired     = "git staging requires a command runner"
	SourceTypeUnsupportedFmt = "source type %q of package %s is not supported"
	SourceCreateDirFmt       = "failed to create staging directory %s: %w"
	SourceCloneFailedFmt     = "failed to clone %s: %w"
	SourceCheckoutFailedFmt  = "failed to check out %s: %w"
	SourcePathInvalidFmt     = "source path %q is empty"
	SourcePathExpandFmt      = "failed to expand source path %s: %w"
	SourcePathStatFmt        = "failed to stat source path %s: %w"
	SourcePathNotDirFmt      = "source path %s is not a directory"
	SourceCopyFailedFmt      = "failed to copy %s to %s: %w"

	BinstubDirRequired      = "binary stub directory is required"
	BinstubSystemRequired   = "binary stub system is required"
	BinstubResolveRootFmt   = "failed to resolve install root %s: %w"
	BinstubCreateDirFmt     = "failed to create binary directory %s: %w"
	BinstubTargetMissingFmt = "binary %s of package %s is missing: %w"
	BinstubWriteFmt         = "failed to write binary stub %s: %w"
	BinstubReadFmt          = "failed to read binary stub %s: %w"
	BinstubRemoveFmt        = "failed to remove binary stub %s: %w"

	StoreNotInitialized       = "state database is not initialized"
	StoreOpenFmt              = "failed to open state database %s: %w"
	StoreCreateDirFmt         = "failed to create state directory %s: %w"
	StorePragmaFmt            = "failed to set pragma %s: %w"
	StoreSchemaFmt            = "failed to create schema: %w"
	StoreListPackagesFmt      = "failed to list packages: %w"
	StoreScanPackageFmt       = "failed to read package row: %w"
	StoreAddPackageFmt        = "failed to add package %s: %w"
	StoreRemovePackageFmt     = "failed to remove package %s: %w"
	StoreEncodeBinariesFmt    = "failed to encode binaries of %s: %w"
	StoreDecodeBinariesFmt    = "failed to decode binaries of %s: %w"
	StoreBeginOperationFmt    = "failed to record operation for %s: %w"
	StoreOperationIDRequired  = "operation id is required"
	StoreFinishOperationFmt   = "failed to finish operation %d: %w"
	StoreOperationNotFoundFmt = "operation %d not found"
	StoreListOperationsFmt    = "failed to list operations: %w"
	StoreParseTimeFmt         = "failed to parse timestamp of operation %d: %w"

	LockCreateDirFmt = "failed to create lock directory for %s: %w"
	LockOpenFmt      = "failed to open lock file %s: %w"
	LockAcquireFmt   = "failed to acquire lock %s: %w"
	LockTimeoutFmt   = "timed out waiting for lock after %s"

	LoggingCreateDirFmt = "failed to create log directory %s: %w"
	LoggingOpenFileFmt  = "failed to open log file %s: %w"
)

// Filesystem helper messages.
const (
	FsutilCreateTempFileFmt   = "create temp file for %s: %w"
	FsutilSetPermissionsFmt   = "set permissions for %s: %w"
	FsutilWriteTempFileFmt    = "write temp file for %s: %w"
	FsutilSyncTempFileFmt     = "sync temp file for %s: %w"
	FsutilCloseTempFileFmt    = "close temp file for %s: %w"
	FsutilRenameTempFileFmt   = "rename temp file for %s: %w"
	FsutilCopySourceNotDirFmt = "copy source %s is not a directory"
	FsutilStatFmt             = "stat %s: %w"
	FsutilReadFmt             = "read %s: %w"
	FsutilWriteFmt            = "write %s: %w"
	FsutilReplaceFmt          = "replace %s: %w"
	FsutilCreateDirFmt        = "create directory %s: %w"
)
