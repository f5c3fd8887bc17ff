package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	base := strings.TrimSpace(cfg.APIBaseURL)
	if base == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyAPIBaseURL)
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%s %q is not an absolute URL", KeyAPIBaseURL, base)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%s scheme must be http or https, got %q", KeyAPIBaseURL, parsed.Scheme)
	}

	if cfg.RequestTimeoutMS <= 0 {
		return nil, fmt.Errorf("%s must be > 0", KeyRequestTimeoutMS)
	}
	if cfg.RequestTimeoutMS < 1000 {
		warnings = append(warnings, Warning{
			Key:     KeyRequestTimeoutMS,
			Message: fmt.Sprintf("timeout of %dms is unusually low; slow queries will fail", cfg.RequestTimeoutMS),
		})
	}

	voice := strings.TrimSpace(cfg.Speech.Voice)
	if voice == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyVoice)
	}
	if !validVoice(voice) {
		return nil, fmt.Errorf("%s must be one of: %s", KeyVoice, strings.Join(Voices, ", "))
	}

	return warnings, nil
}

func validVoice(voice string) bool {
	for _, v := range Voices {
		if v == voice {
			return true
		}
	}
	return false
}
