// Package doctor runs runtime readiness diagnostics for config, audio, and the
// recommendation service.
package doctor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kmorrow/librarian/internal/api"
	"github.com/kmorrow/librarian/internal/audio"
	"github.com/kmorrow/librarian/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config/audio/service checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, checkConfig(cfg))
	checks = append(checks, checkAudioSelection(ctx, cfg.Config))
	checks = append(checks, checkServiceHealth(ctx, cfg.Config))

	return Report{Checks: checks}
}

func checkConfig(cfg config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		message = fmt.Sprintf("no file at %q, using defaults", cfg.Path)
	}
	if len(cfg.Warnings) > 0 {
		notes := make([]string, 0, len(cfg.Warnings))
		for _, w := range cfg.Warnings {
			notes = append(notes, w.Message)
		}
		message = message + " (" + strings.Join(notes, "; ") + ")"
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	device, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	return Check{Name: "audio.device", Pass: true, Message: fmt.Sprintf("selected %q", device.ID)}
}

// checkServiceHealth probes the recommendation service /health endpoint.
func checkServiceHealth(ctx context.Context, cfg config.Config) Check {
	client := api.New(cfg.APIBaseURL, 2*time.Second, nil)
	if err := client.Health(ctx); err != nil {
		return Check{Name: "service.health", Pass: false, Message: err.Error()}
	}
	return Check{Name: "service.health", Pass: true, Message: fmt.Sprintf("ready at %s", cfg.APIBaseURL)}
}
