package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects the resolved configuration, external commands, and
// feature flags, then emits a single structured zerolog event summarising the
// state the program started in. When a session misbehaves, this one line says
// exactly how the tool was wired.
type StartupLogger struct {
	name         string
	initDuration time.Duration

	commands map[string]string
	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the given binary name.
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		commands: make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Command registers an external command template (capture, speech, player)
// this run will exec.
func (s *StartupLogger) Command(label, cmd string) *StartupLogger {
	if cmd != "" {
		s.commands[label] = cmd
	}
	return s
}

// Feature registers a boolean feature flag (e.g. "mirror", "narration").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	if value != "" {
		s.config[key] = value
	}
	return s
}

// InitDuration records how long startup took up to client validation.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if the variable is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

// Log emits a single structured INFO event with all collected information.
func (s *StartupLogger) Log() {
	evt := log.Info().
		Dict("app", zerolog.Dict().
			Str("name", s.name).
			Str("goVersion", runtime.Version()).
			Str("os", runtime.GOOS).
			Str("arch", runtime.GOARCH).
			Str("logLevel", os.Getenv("STORYCAM_LOG_LEVEL")))

	if len(s.commands) > 0 {
		evt = evt.Dict("commands", dictFromMap(s.commands))
	}
	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}
	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}
	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Startup complete")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
