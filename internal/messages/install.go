package messages

// Installer and upgrade protocol messages.
const (
	InstallPackageTypeRequired = "installer package type is required"
	InstallSystemRequired      = "installer system is required"
	InstallRepositoryRequired  = "installer repository is required"
	InstallStagerRequired      = "installer stager is required"
	InstallResolverRequired    = "installer change-set resolver is required"

	InstallPathDebugFmt     = "Install path for package %s is '%s'"
	InstallStagingDebug     = "staging target revision"
	InstallScratchDirFmt    = "staging into %s"
	InstallScratchLeakFmt   = "Warning: could not remove staging directory %s: %v\n"
	InstallNewVersionFmt    = "Core new version : %s\n"
	InstallCreateScratchFmt = "failed to create staging directory: %w"
	InstallRootNotDirFmt    = "install root %s is not a directory"
	InstallListPackagesFmt  = "failed to read installed packages: %w"

	InstallMergeInterruptedFmt = "The merge into %s was interrupted. The root may hold a mix of old and new files.\nThe full staged tree is kept at %s; copy it over the root to finish by hand.\n"

	InstallFailedStatFmt    = "failed to stat %s: %w"
	InstallFailedReadFmt    = "failed to read %s: %w"
	InstallDeleteFailedFmt  = "failed to delete %s: %w"
	InstallRemoveIgnoredFmt = "failed to remove ignored entry %s: %w"
	InstallWalkFmt          = "failed to walk %s: %w"
	InstallMergeFailedFmt   = "failed to merge %s into %s: %w"

	InstallStepFailedFmt        = "upgrade step %s failed: %w"
	InstallStepFailedJournalFmt = "upgrade step %s failed: %w; failed to record operation: %v"

	InstallJournalBeginFmt  = "failed to record operation start: %w"
	InstallJournalFinishFmt = "failed to record outcome of operation %d: %w"
	InstallRegisterFmt      = "failed to register %s: %w"
	InstallUnregisterFmt    = "failed to unregister %s: %w"

	InstallIgnoreNameInvalidFmt    = "ignore entry %q must be a single path component"
	InstallChangeSetPathInvalidFmt = "change set path %q is not a clean relative path"
	InstallChangeSetPathOutsideFmt = "change set path %s escapes root %s"
	InstallPlanStageFmt            = "failed to stage %s for planning: %w"
)

// Package manifest messages.
const (
	PackageNameRequired         = "package name is required"
	PackageVersionRequiredFmt   = "package %s: version is required"
	PackageTypeRequiredFmt      = "package %s: type is required"
	PackageSourceTypeInvalidFmt = "package %s: source type %q must be %q or %q"
	PackageSourceURLRequiredFmt = "package %s: source url is required"
	PackageBinaryInvalidFmt     = "package %s: binary %q must be a relative path inside the package"
	PackageManifestReadFmt      = "failed to read manifest %s: %w"
	PackageManifestInvalidFmt   = "invalid manifest %s: %w"
	PackageManifestFormatFmt    = "unsupported manifest format for %s (use .toml, .yaml or .yml)"
)
