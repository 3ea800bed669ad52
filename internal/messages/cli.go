package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "coreinst"
	// RootShort is the short description for the root command.
	RootShort       = "Install and upgrade core packages in place"
	RootVersionFlag = "Print version and exit"
	RootConfigFlag  = "Path to the installer config file"
	RootVerboseFlag = "Increase log verbosity (repeatable)"
	RootLogFileFlag = "Write logs to this file in addition to stderr"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	FlagManifest = "Read the target package from a TOML or YAML manifest instead of the config"

	CLIPackageRequired           = "no package configured; add a [package] table to the config or pass --manifest"
	CLIPackageTypeUnsupportedFmt = "package %s has type %q; this installer handles %q packages"

	InstallUse                      = "install"
	InstallShort                    = "Install the configured package at its install path"
	InstallFlagYes                  = "Merge into a populated root without asking"
	InstallMergeUnrecordedPromptFmt = "%s already has files but no recorded revision. Merge the package into it?"
	InstallCancelled                = "Install cancelled."
	InstallDoneFmt                  = "Installed %s at %s"

	UpdateUse                  = "update"
	UpdateShort                = "Upgrade the installed package to the configured revision"
	UpdateFlagYes              = "Apply the update without asking"
	UpdateNotInstalledFmt      = "package %s is not installed; run 'coreinst install' first"
	UpdateUpToDateFmt          = "%s is already up to date.\n"
	UpdateRequiresConfirmation = "update needs confirmation; re-run in a terminal or pass --yes"
	UpdateConfirmFmt           = "Update %s from %s to %s?"
	UpdateCancelled            = "Update cancelled."
	UpdateDoneFmt              = "Updated %s to %s at %s"

	ConfirmAffirmative = "Update"
	ConfirmNegative    = "Cancel"

	PlanUse              = "plan"
	PlanShort            = "Preview what install or update would change without touching the root"
	PlanFlagJSON         = "Print the plan as JSON"
	PlanFlagDiffLines    = "Maximum diff lines shown per updated file (0 uses the config value)"
	PlanHeader           = "Upgrade plan (dry-run, nothing was changed)"
	PlanNoRevision       = "(none)"
	PlanSummaryFmt       = "%s at %s: %s -> %s\n"
	PlanFreshNote        = "Install root is empty; the package will be staged directly into it."
	PlanAdditionsTitle   = "Additions"
	PlanUpdatesTitle     = "Updates"
	PlanDeletionsTitle   = "Deletions"
	PlanIgnoredTitle     = "Ignored (kept as-is in the root)"
	PlanNoneLine         = "  - (none)"
	PlanPathLineFmt      = "  - %s"
	PlanBinarySuffix     = " (binary)"
	PlanKindChangeSuffix = " (type change)"
	PlanUnchangedFmt     = "\nUnchanged files: %d\n"

	StatusUse                = "status"
	StatusShort              = "Show the recorded revision and the state of the install root"
	StatusRootFmt            = "Root: %s\n"
	StatusNotRecorded        = "No revision recorded for this root."
	StatusRecordedFmt        = "Recorded: %s %s\n"
	StatusInstalled          = "Marker directory present: installed"
	StatusMarkerMissingFmt   = "Marker directory %s is missing"
	StatusUpdateAvailableFmt = "Configured revision differs: %s\n"

	PathUse   = "path"
	PathShort = "Print the install path of the configured package"

	HistoryUse        = "history"
	HistoryShort      = "List recorded install and update operations"
	HistoryFlagLimit  = "Maximum number of operations to list"
	HistoryEmpty      = "No operations recorded."
	HistoryLineFmt    = "#%d  %s  %-15s %s  %s  %s"
	HistoryFailureFmt = "    failed at %s: %s\n"
	HistoryScratchFmt = "    staged tree kept at %s\n"

	PromptYesDefaultFmt   = "%s [Y/n]: "
	PromptNoDefaultFmt    = "%s [y/N]: "
	PromptInvalidResponse = "invalid response %q"
	PromptRetryYesNo      = "Please enter y or n."
)
