package config

const (
	defaultDataDir                = "~/.local/share/rosterid"
	defaultLogDir                 = "~/.local/share/rosterid/logs"
	defaultRegistryTimeoutSeconds = 5
	defaultMinPathSegments        = 2
	defaultMinSimilarity          = 0.85
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Registry: Registry{
			Enabled:        false,
			TimeoutSeconds: defaultRegistryTimeoutSeconds,
		},
		Matching: Matching{
			MinPathSegments:    defaultMinPathSegments,
			EligibleCategories: []string{"T"},
			KnownCategories:    nil,
			IdentityFileNames:  []string{"athlete.info", "athlete.xml"},
		},
		Dedup: Dedup{
			MinSimilarity:  defaultMinSimilarity,
			AutoMergeExact: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
