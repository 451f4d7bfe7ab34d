package config

// Overrides holds command-line settings. Nil or zero fields leave the
// loaded value alone.
type Overrides struct {
	Debug     bool
	LogLevel  string
	LogFile   string
	Palette   *int
	Workers   int
	NoCache   bool
	OutputDir string
	Format    string
}

// apply applies command-line overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.Palette != nil {
		cfg.Decode.Palette = *o.Palette
	}
	if o.Workers > 0 {
		cfg.Decode.Workers = o.Workers
	}
	if o.NoCache {
		cfg.Decode.Cache = false
	}
	if o.OutputDir != "" {
		cfg.Export.OutputDir = o.OutputDir
	}
	if o.Format != "" {
		cfg.Export.Format = o.Format
	}
}
