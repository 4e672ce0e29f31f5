package config

const (
	defaultLogDir             = "~/.local/share/photoclean/logs"
	defaultHistoryDB          = "~/.local/share/photoclean/history.db"
	defaultThreshold          = 0.7
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogMaxSizeMB       = 10
	defaultLogMaxBackups      = 3
	defaultLogMaxAgeDays      = 30
	defaultWatchSettleSeconds = 5
	defaultHistoryKeepRuns    = 50
)

func defaultExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Scan: Scan{
			Threshold:    defaultThreshold,
			Extensions:   defaultExtensions(),
			SniffContent: false,
			VerifyMoves:  false,
		},
		Watch: Watch{
			SettleSeconds: defaultWatchSettleSeconds,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
		History: History{
			Enabled:  true,
			KeepRuns: defaultHistoryKeepRuns,
		},
	}
}
