// Package provider defines the generative backend abstraction and the
// registry through which concrete backends are constructed from config.
package provider

import (
	"context"
	"math"
	"time"
)

// GenerationRequest is a single prompt sent to the backend.
type GenerationRequest struct {
	Prompt string
	System string
}

// GenerationResult carries the generated text plus throughput metadata
// reported by the backend, when available.
type GenerationResult struct {
	Text            string
	TokensEvaluated int
	EvalDuration    time.Duration
	Accelerated     bool
}

// TokensPerSecond derives throughput from the evaluation counters,
// rounded to two decimals. Zero when the backend reported no duration.
func (r *GenerationResult) TokensPerSecond() float64 {
	if r.EvalDuration <= 0 {
		return 0
	}
	tps := float64(r.TokensEvaluated) / r.EvalDuration.Seconds()
	return math.Round(tps*100) / 100
}

// Backend generates text from a prompt. Implementations must honor
// context cancellation.
type Backend interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}

// Health describes backend availability, used by the check command.
type Health struct {
	Status  string   // "healthy", "offline", or "error"
	Models  []string // available model names, when the backend reports them
	Message string
}

// HealthChecker is implemented by backends that can report availability.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (*Health, error)
}
