package config

const (
	defaultOutputDir     = "~/clipforge/output"
	defaultLogDir        = "~/.local/share/clipforge/logs"
	defaultHistoryPath   = "~/.local/share/clipforge/history.db"
	defaultFFmpegBinary  = "ffmpeg"
	defaultProbeBinary   = "ffprobe"
	defaultWorkers       = 2
	defaultCRF           = 18
	defaultPreset        = "medium"
	defaultAudioBitrate  = "192k"
	defaultPreviewCRF    = 30
	defaultPreviewPreset = "veryfast"
	defaultPreviewScale  = 2
	defaultImageQuality  = 4
	defaultLogFormat     = "auto"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		FFmpeg: FFmpeg{
			Binary:      defaultFFmpegBinary,
			ProbeBinary: defaultProbeBinary,
		},
		Queue: Queue{
			Workers: defaultWorkers,
		},
		Output: Output{
			CRF:           defaultCRF,
			Preset:        defaultPreset,
			AudioBitrate:  defaultAudioBitrate,
			PreviewCRF:    defaultPreviewCRF,
			PreviewPreset: defaultPreviewPreset,
			PreviewScale:  defaultPreviewScale,
			ImageQuality:  defaultImageQuality,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
