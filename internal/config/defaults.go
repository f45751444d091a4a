package config

const (
	defaultConfigPath     = "~/.config/clerk/config.toml"
	defaultLogDir         = "~/.local/share/clerk/logs"
	defaultStateDir       = "~/.local/share/clerk"
	defaultClientsFile    = "~/.config/clerk/clients.toml"
	defaultMatcherMode    = "auto"
	defaultIndexThreshold = 2
	defaultMaxTextBytes   = 16 << 20
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// DefaultExtensions lists the document types clerk classifies.
func DefaultExtensions() []string {
	return []string{".pdf", ".docx", ".txt"}
}

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:      defaultLogDir,
			StateDir:    defaultStateDir,
			ClientsFile: defaultClientsFile,
		},
		Organize: Organize{
			Extensions: DefaultExtensions(),
		},
		Matcher: Matcher{
			Mode:           defaultMatcherMode,
			IndexThreshold: defaultIndexThreshold,
		},
		Extract: Extract{
			MaxTextBytes: defaultMaxTextBytes,
		},
		Logging: Logging{
			Format:  defaultLogFormat,
			Level:   defaultLogLevel,
			Console: true,
		},
	}
}
