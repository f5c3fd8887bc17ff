package config

// Voices lists the speech synthesis voices the remote service accepts.
var Voices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		APIBaseURL:       "http://127.0.0.1:8000",
		RequestTimeoutMS: 30000,
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Speech: SpeechConfig{Voice: "alloy"},
	}
}
