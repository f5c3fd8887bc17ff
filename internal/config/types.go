// Package config resolves, parses, validates, and defaults librarian configuration.
package config

// Config is the fully materialized runtime configuration used by librarian.
type Config struct {
	APIBaseURL       string
	RequestTimeoutMS int
	Audio            AudioConfig
	Speech           SpeechConfig
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// SpeechConfig controls the voice requested for speech synthesis.
type SpeechConfig struct {
	Voice string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Key     string
	Message string
}
