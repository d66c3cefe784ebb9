package config

const (
	defaultOutputDir         = "~/Pictures/timeline"
	defaultLogDir            = "~/.local/share/snapsort/logs"
	defaultQuarantineSubdir  = "_duplicates"
	defaultMode              = ModeExact
	defaultDistanceThreshold = 10
	defaultOnDuplicate       = PolicyQuarantine
	defaultFolderLayout      = "2006/01"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

func defaultExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".heif"}
}

func defaultSkipNames() []string {
	return []string{"Thumbs.db", ".DS_Store"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Scanner: Scanner{
			Extensions: defaultExtensions(),
			SkipNames:  defaultSkipNames(),
		},
		Detector: Detector{
			Mode:              defaultMode,
			DistanceThreshold: defaultDistanceThreshold,
		},
		Organizer: Organizer{
			OnDuplicate:  defaultOnDuplicate,
			FolderLayout: defaultFolderLayout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
