package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Keys accepted in the config file and as LIBRARIAN_* process environment overrides.
const (
	KeyAPIBaseURL       = "LIBRARIAN_API_BASE_URL"
	KeyRequestTimeoutMS = "LIBRARIAN_REQUEST_TIMEOUT_MS"
	KeyAudioInput       = "LIBRARIAN_AUDIO_INPUT"
	KeyAudioFallback    = "LIBRARIAN_AUDIO_FALLBACK"
	KeyVoice            = "LIBRARIAN_VOICE"
)

var knownKeys = map[string]struct{}{
	KeyAPIBaseURL:       {},
	KeyRequestTimeoutMS: {},
	KeyAudioInput:       {},
	KeyAudioFallback:    {},
	KeyVoice:            {},
}

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
// Precedence: defaults < config file < process environment.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	loaded := Loaded{Path: resolvedPath, Config: Default()}

	values, err := godotenv.Read(resolvedPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
		}
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
		})
	} else {
		loaded.Exists = true
		warnings, err := apply(&loaded.Config, values)
		if err != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
		}
		loaded.Warnings = append(loaded.Warnings, warnings...)
	}

	if err := applyEnvOverrides(&loaded.Config); err != nil {
		return Loaded{}, err
	}

	validateWarnings, err := Validate(loaded.Config)
	if err != nil {
		return Loaded{}, err
	}
	loaded.Warnings = append(loaded.Warnings, validateWarnings...)

	return loaded, nil
}

// apply copies file values into cfg, warning on unknown keys.
func apply(cfg *Config, values map[string]string) ([]Warning, error) {
	warnings := make([]Warning, 0)

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := strings.TrimSpace(values[key])
		if _, ok := knownKeys[key]; !ok {
			warnings = append(warnings, Warning{Key: key, Message: fmt.Sprintf("unknown config key %q ignored", key)})
			continue
		}
		if err := set(cfg, key, value); err != nil {
			return nil, err
		}
	}

	return warnings, nil
}

// applyEnvOverrides lets process environment values win over file values.
func applyEnvOverrides(cfg *Config) error {
	for key := range knownKeys {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			continue
		}
		if err := set(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

func set(cfg *Config, key, value string) error {
	switch key {
	case KeyAPIBaseURL:
		cfg.APIBaseURL = value
	case KeyRequestTimeoutMS:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, value)
		}
		cfg.RequestTimeoutMS = n
	case KeyAudioInput:
		cfg.Audio.Input = value
	case KeyAudioFallback:
		cfg.Audio.Fallback = value
	case KeyVoice:
		cfg.Speech.Voice = strings.ToLower(value)
	}
	return nil
}
