package messages

// Config messages for loading and validation.
const (
	ConfigReadFmt             = "failed to read config %s: %w"
	ConfigInvalidConfigFmt    = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt = "unrecognized keys in %s: %v"
	ConfigResolvePathFmt      = "failed to resolve path %s: %w"

	ConfigPackageTypeRequiredFmt = "%s: installer.package_type is required"
	ConfigMarkerDirInvalidFmt    = "%s: installer.marker_dir %q must be a relative path inside the root"
	ConfigDiffMaxLinesInvalidFmt = "%s: installer.diff_max_lines must be zero or positive, got %d"
	ConfigIgnoreInvalidFmt       = "%s: invalid ignore policy: %w"
	ConfigPackageInvalidFmt      = "%s: invalid package: %w"
	ConfigPackageTypeMismatchFmt = "%s: package %s has type %q but installer.package_type is %q"
)
