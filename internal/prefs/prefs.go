// Package prefs persists the two user preferences that outlive a session:
// the selected narration voice and the speech rate. Loaded once at startup,
// saved on change. No versioning or migration.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const (
	appName   = "storycam"
	prefsFile = "prefs.json"
)

// Prefs holds the persisted user preferences.
type Prefs struct {
	// VoiceName is the exact name of the previously chosen narration voice.
	// Empty means no preference; the narrator falls back through its
	// language-based priority order.
	VoiceName string `json:"voice_name,omitempty"`

	// SpeechRate is the narration rate multiplier. Zero means "engine
	// default".
	SpeechRate float64 `json:"speech_rate,omitempty"`

	path string
}

// Load reads preferences from the user config dir. A missing file is not an
// error: it returns zero-value prefs wired to the default path so a later
// Save creates the file.
func Load() (*Prefs, error) {
	path, err := defaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolve prefs path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads preferences from an explicit path.
func LoadFrom(path string) (*Prefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("No prefs file, starting with defaults")
			return &Prefs{path: path}, nil
		}
		return nil, fmt.Errorf("read prefs: %w", err)
	}

	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal prefs: %w", err)
	}
	p.path = path

	log.Debug().
		Str("path", path).
		Str("voice", p.VoiceName).
		Float64("rate", p.SpeechRate).
		Msg("Preferences loaded")
	return &p, nil
}

// Save persists the preferences to disk, creating the config dir if needed.
func (p *Prefs) Save() error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	log.Debug().Str("path", p.path).Msg("Preferences saved")
	return nil
}

// SetVoiceName updates the stored voice name and saves when it changed.
func (p *Prefs) SetVoiceName(name string) error {
	if p.VoiceName == name {
		return nil
	}
	p.VoiceName = name
	return p.Save()
}

// SetSpeechRate updates the stored speech rate and saves when it changed.
func (p *Prefs) SetSpeechRate(rate float64) error {
	if p.SpeechRate == rate {
		return nil
	}
	p.SpeechRate = rate
	return p.Save()
}

// Path returns the file this Prefs instance reads from and writes to.
func (p *Prefs) Path() string {
	return p.path
}

func defaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, prefsFile), nil
}
