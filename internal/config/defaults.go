package config

const (
	defaultWorkspaceRoot       = "~/.local/share/framemark/workspaces"
	defaultResultsDir          = "~/.local/share/framemark/results"
	defaultLogDir              = "~/.local/share/framemark/logs"
	defaultAPIBind             = "127.0.0.1:5001"
	defaultExtractionCommand   = "ffmpeg"
	defaultExtractionTimeout   = 600
	defaultSegmentationCommand = "clipseg-annotate"
	defaultSegmentationTimeout = 3600
	defaultSegmentationPrompt  = "a person"
	defaultAssemblyCommand     = "ffmpeg"
	defaultAssemblyFrameRate   = 30
	defaultAssemblyTimeout     = 600
	defaultMaxConcurrentJobs   = 4
	defaultMaxUploadMiB        = 512
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceRoot: defaultWorkspaceRoot,
			ResultsDir:    defaultResultsDir,
			LogDir:        defaultLogDir,
			APIBind:       defaultAPIBind,
		},
		Extraction: Extraction{
			Command:        defaultExtractionCommand,
			TimeoutSeconds: defaultExtractionTimeout,
		},
		Segmentation: Segmentation{
			Command:        defaultSegmentationCommand,
			TimeoutSeconds: defaultSegmentationTimeout,
			DefaultPrompt:  defaultSegmentationPrompt,
		},
		Assembly: Assembly{
			Command:        defaultAssemblyCommand,
			FrameRate:      defaultAssemblyFrameRate,
			TimeoutSeconds: defaultAssemblyTimeout,
		},
		Workflow: Workflow{
			MaxConcurrentJobs: defaultMaxConcurrentJobs,
			MaxUploadMiB:      defaultMaxUploadMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
