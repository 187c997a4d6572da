package config

const (
	defaultWorkspaceDir = "~/.local/share/wavebench/workspace"
	defaultLogDir       = "~/.local/share/wavebench/logs"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults. Operator
// defaults mirror the documented parameter defaults.
func Default() Config {
	return Config{
		Workspace: Workspace{
			Dir:    defaultWorkspaceDir,
			LogDir: defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Subtract: Subtract{
			MatchMode:            "by_key",
			MissingChannelPolicy: "skip",
			BgScale:              1.0,
			ExpScale:             1.0,
			TimeAlign:            "require_equal",
			StoreOriginal:        true,
			RecordHistory:        true,
		},
		Detect: Detect{
			Polarity:           "normalized",
			NoiseMethod:        "mad",
			ThresholdSigma:     5.0,
			MinDistanceSamples: 20,
			MinWidthSamples:    1,
			StoreRegions:       true,
			StoreSNR:           true,
		},
	}
}
