package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodocai/repodoc/internal/config"
)

func TestTokensPerSecond(t *testing.T) {
	r := &GenerationResult{TokensEvaluated: 300, EvalDuration: 2 * time.Second}
	assert.Equal(t, 150.0, r.TokensPerSecond())

	r = &GenerationResult{TokensEvaluated: 100, EvalDuration: 3 * time.Second}
	assert.Equal(t, 33.33, r.TokensPerSecond())

	r = &GenerationResult{TokensEvaluated: 100}
	assert.Equal(t, 0.0, r.TokensPerSecond())
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unavailable", &BackendError{Kind: KindUnavailable, Op: "generate", Err: errors.New("boom")}, true},
		{"timeout", &BackendError{Kind: KindTimeout, Op: "generate", Err: errors.New("slow")}, true},
		{"bad request", &BackendError{Kind: KindBadRequest, Op: "generate", Err: errors.New("nope")}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestBackendErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &BackendError{Kind: KindUnavailable, Op: "generate", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "backend unavailable")
}

type fakeBackend struct{}

func (fakeBackend) Generate(_ context.Context, _ GenerationRequest) (*GenerationResult, error) {
	return &GenerationResult{Text: "ok"}, nil
}

func TestFactory(t *testing.T) {
	Register("fake", func(config.BackendConfig) (Backend, error) {
		return fakeBackend{}, nil
	})

	b, err := New(config.BackendConfig{Provider: "fake"})
	require.NoError(t, err)
	assert.NotNil(t, b)

	_, err = New(config.BackendConfig{Provider: "nope"})
	assert.ErrorContains(t, err, "unknown backend provider")
}
