package config

const (
	defaultWatchedRoot        = "~/Downloads"
	defaultDataDir            = "~/.local/share/shelf"
	defaultLogDir             = "~/.local/share/shelf/logs"
	defaultAPIBind            = "127.0.0.1:7519"
	defaultDuplicatesDir      = "Duplicates"
	defaultFingerprintWorkers = 4
	defaultQueueDepth         = 64
	defaultDebounceWindowMS   = 2000
	defaultSettlePollMS       = 500
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchedRoot: defaultWatchedRoot,
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
		},
		Organizer: Organizer{
			DuplicatesDir:      defaultDuplicatesDir,
			FingerprintWorkers: defaultFingerprintWorkers,
			QueueDepth:         defaultQueueDepth,
		},
		Watcher: Watcher{
			DebounceWindowMS: defaultDebounceWindowMS,
			SettlePollMS:     defaultSettlePollMS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Passes:         true,
			Files:          false,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
