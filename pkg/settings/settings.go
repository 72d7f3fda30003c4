package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings represents user-tunable configuration that should persist across
// application restarts.
type Settings struct {
	DanmakuVisible bool   `json:"danmakuVisible"`
	FontSize       int    `json:"fontSize"`
	Volume         int    `json:"volume"`
	RecordDir      string `json:"recordDir"`
}

var defaultSettings = Settings{
	DanmakuVisible: true,
	FontSize:       18,
	Volume:         100,
	RecordDir:      "recordings",
}

// Path is where Load and Save keep the settings file.
var Path = "settings.json"

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return defaultSettings
}

// Load reads the settings file at Path.
func Load() Settings {
	return LoadFrom(Path)
}

// LoadFrom reads the settings file at path. When the file is missing or
// cannot be parsed, defaults are returned so the player can still start.
// Fields absent from the file keep their defaults.
func LoadFrom(path string) Settings {
	f, err := os.Open(path)
	if err != nil {
		return defaultSettings
	}
	defer f.Close()

	s := defaultSettings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return defaultSettings
	}

	if s.FontSize <= 0 {
		s.FontSize = defaultSettings.FontSize
	}
	s.Volume = ClampVolume(s.Volume)
	if s.RecordDir == "" {
		s.RecordDir = defaultSettings.RecordDir
	}
	return s
}

// Save writes s to Path.
func Save(s Settings) error {
	return SaveTo(Path, s)
}

// SaveTo writes s to path, creating its directory when necessary.
func SaveTo(path string, s Settings) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ClampVolume limits v to [0, 100].
func ClampVolume(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
