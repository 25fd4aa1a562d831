// Package narrative turns a repository profile into prose documentation
// and a scored code review by prompting a generative backend. Backend
// failures degrade the output instead of failing synthesis.
package narrative

import (
	"context"
	"log"
	"time"

	"github.com/repodocai/repodoc/internal/analyzer"
	"github.com/repodocai/repodoc/internal/provider"
	"github.com/repodocai/repodoc/internal/report"
)

const defaultBackoffBase = 500 * time.Millisecond

// Metrics captures throughput of the attempt that produced the text.
// Failed attempts contribute nothing.
type Metrics struct {
	TokensPerSecond float64       `json:"tokensPerSecond"`
	TotalTokens     int           `json:"totalTokens"`
	Accelerated     bool          `json:"accelerated"`
	Duration        time.Duration `json:"duration"`
	Attempts        int           `json:"attempts"`
}

// Narrative is the parsed output of both generation calls. Well-known
// sections are lifted into named fields; the rest stay in Sections.
type Narrative struct {
	Overview     string
	TechStack    string
	SetupGuide   string
	APIDocs      string
	Contributing string
	Sections     []Section
	Review       []ReviewArea

	// Degraded flags mark calls that exhausted their retries.
	DocsDegraded   bool
	ReviewDegraded bool

	DocsMetrics   *Metrics
	ReviewMetrics *Metrics
}

// Synthesizer issues the documentation and review calls with bounded
// retries.
type Synthesizer struct {
	backend     provider.Backend
	maxAttempts int
	backoffBase time.Duration
}

// New creates a Synthesizer. maxAttempts below 1 is treated as 1.
func New(backend provider.Backend, maxAttempts int) *Synthesizer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Synthesizer{
		backend:     backend,
		maxAttempts: maxAttempts,
		backoffBase: defaultBackoffBase,
	}
}

// Synthesize runs the documentation call then the review call. A call
// whose retries are exhausted leaves its sections empty and sets the
// corresponding Degraded flag; only context cancellation aborts.
func (s *Synthesizer) Synthesize(ctx context.Context, p *analyzer.Profile, health *report.HealthReport) (*Narrative, error) {
	n := &Narrative{}

	docsPrompt, err := buildDocsPrompt(p)
	if err != nil {
		return nil, err
	}
	res, metrics, err := s.generate(ctx, provider.GenerationRequest{
		Prompt: docsPrompt,
		System: docsSystemPrompt,
	})
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		log.Printf("WARNING: documentation generation failed: %v", err)
		n.DocsDegraded = true
	default:
		s.applySections(n, parseSections(res.Text))
		n.DocsMetrics = metrics
	}

	reviewPrompt, err := buildReviewPrompt(p, health)
	if err != nil {
		return nil, err
	}
	res, metrics, err = s.generate(ctx, provider.GenerationRequest{
		Prompt: reviewPrompt,
		System: reviewSystemPrompt,
	})
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		log.Printf("WARNING: code review generation failed: %v", err)
		n.ReviewDegraded = true
	default:
		n.Review = parseReview(res.Text)
		n.ReviewMetrics = metrics
	}

	return n, nil
}

// applySections lifts well-known sections into named fields. An API
// section also stays in the remainder, matching the flattened layout
// where API docs appear both standalone and in sequence.
func (s *Synthesizer) applySections(n *Narrative, sections []Section) {
	for _, sec := range sections {
		switch sec.Kind {
		case KindOverview:
			n.Overview = sec.Content
		case KindTechStack:
			n.TechStack = sec.Content
		case KindSetup:
			n.SetupGuide = sec.Content
		case KindAPI:
			n.APIDocs = sec.Content
			n.Sections = append(n.Sections, sec)
		case KindContributing:
			n.Contributing = sec.Content
		default:
			n.Sections = append(n.Sections, sec)
		}
	}
	if n.Overview == "" && len(sections) > 0 {
		n.Overview = sections[0].Content
	}
}

// generate retries transient failures with doubling backoff. The
// returned metrics describe the successful attempt only.
func (s *Synthesizer) generate(ctx context.Context, req provider.GenerationRequest) (*provider.GenerationResult, *Metrics, error) {
	backoff := s.backoffBase
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		start := time.Now()
		res, err := s.backend.Generate(ctx, req)
		if err == nil {
			return res, &Metrics{
				TokensPerSecond: res.TokensPerSecond(),
				TotalTokens:     res.TokensEvaluated,
				Accelerated:     res.Accelerated,
				Duration:        time.Since(start),
				Attempts:        attempt,
			}, nil
		}
		lastErr = err

		if !provider.Retryable(err) || attempt == s.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, nil, lastErr
}
