package ollama

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/repodocai/repodoc/internal/config"
	"github.com/repodocai/repodoc/internal/provider"
)

func init() {
	provider.Register("ollama", func(cfg config.BackendConfig) (provider.Backend, error) {
		return New(cfg), nil
	})
}

const (
	defaultTemperature = 0.3
	defaultTopP        = 0.9
	defaultNumPredict  = 4096
)

// Backend implements provider.Backend against an Ollama server.
type Backend struct {
	client      *Client
	model       string
	callTimeout time.Duration
	limiter     *rate.Limiter
	accelerated bool
}

// New creates an Ollama backend from its configuration section.
func New(cfg config.BackendConfig) *Backend {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Backend{
		client:      NewClient(cfg.BaseURL),
		model:       cfg.Model,
		callTimeout: cfg.CallTimeout,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		accelerated: cfg.Accelerated,
	}
}

// Generate sends a non-streaming completion request. Connection failures
// and 5xx responses classify as unavailable, deadline expiry as timeout,
// other HTTP errors as bad requests.
func (b *Backend) Generate(ctx context.Context, req provider.GenerationRequest) (*provider.GenerationResult, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx := ctx
	if b.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.callTimeout)
		defer cancel()
	}

	resp, err := b.client.generate(callCtx, generateRequest{
		Model:  b.model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Options: generateOptions{
			Temperature: defaultTemperature,
			TopP:        defaultTopP,
			NumPredict:  defaultNumPredict,
		},
	})
	if err != nil {
		return nil, b.classify(err)
	}

	return &provider.GenerationResult{
		Text:            resp.Response,
		TokensEvaluated: resp.EvalCount,
		EvalDuration:    time.Duration(resp.EvalDuration),
		Accelerated:     b.accelerated,
	}, nil
}

func (b *Backend) classify(err error) error {
	var he *httpError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &provider.BackendError{Kind: provider.KindTimeout, Op: "generate", Err: err}
	case errors.As(err, &he):
		if he.status >= http.StatusInternalServerError {
			return &provider.BackendError{Kind: provider.KindUnavailable, Op: "generate", Err: err}
		}
		return &provider.BackendError{Kind: provider.KindBadRequest, Op: "generate", Err: err}
	case errors.Is(err, context.Canceled):
		return err
	default:
		// Connection refused, DNS failure and friends.
		return &provider.BackendError{Kind: provider.KindUnavailable, Op: "generate", Err: err}
	}
}

// CheckHealth probes GET /api/tags and reports availability plus the
// locally installed models.
func (b *Backend) CheckHealth(ctx context.Context) (*provider.Health, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	models, err := b.client.ListModels(probeCtx)
	if err != nil {
		return &provider.Health{
			Status:  "offline",
			Message: "Ollama is not reachable. Start with: ollama serve",
		}, nil
	}

	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	return &provider.Health{Status: "healthy", Models: names}, nil
}
