package config

const (
	defaultLogDir        = "~/.local/share/vadseg/logs"
	defaultRunsDB        = "~/.local/share/vadseg/runs.db"
	defaultOnset         = 0.5
	defaultOffset        = 0.5
	defaultScale         = "absolute"
	defaultFrameLength   = 0.01
	defaultMethod        = "median"
	defaultOverlap       = 0.5
	defaultWindowLength  = 0.63
	defaultShiftLength   = 0.01
	defaultSplitDuration = 400.0
	defaultLabel         = "infer"
	defaultWorkers       = 4
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
			RunsDB: defaultRunsDB,
		},
		Postprocessing: Postprocessing{
			Onset:             defaultOnset,
			Offset:            defaultOffset,
			FilterSpeechFirst: true,
			Scale:             defaultScale,
			FrameLength:       defaultFrameLength,
		},
		Smoothing: Smoothing{
			Method:       defaultMethod,
			Overlap:      defaultOverlap,
			WindowLength: defaultWindowLength,
			ShiftLength:  defaultShiftLength,
		},
		Manifest: Manifest{
			SplitDuration: defaultSplitDuration,
			Label:         defaultLabel,
		},
		Batch: Batch{
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
