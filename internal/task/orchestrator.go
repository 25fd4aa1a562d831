package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/errgroup"

	"github.com/repodocai/repodoc/internal/advisory"
	"github.com/repodocai/repodoc/internal/analyzer"
	"github.com/repodocai/repodoc/internal/assemble"
	"github.com/repodocai/repodoc/internal/config"
	"github.com/repodocai/repodoc/internal/diagram"
	"github.com/repodocai/repodoc/internal/ingest"
	"github.com/repodocai/repodoc/internal/narrative"
	"github.com/repodocai/repodoc/internal/provider"
	"github.com/repodocai/repodoc/internal/report"
	"github.com/repodocai/repodoc/internal/store"
)

// ErrTaskNotFound is returned for unknown or evicted task ids.
var ErrTaskNotFound = errors.New("task not found")

// ErrNotReady is returned when a result is requested before completion.
var ErrNotReady = errors.New("task not complete")

// Ingester materializes and disposes repository working trees.
type Ingester interface {
	Clone(ctx context.Context, ref *ingest.Ref, credential string) (string, error)
	Cleanup(path string) error
}

// Orchestrator runs documentation tasks. Concurrent generation is
// bounded by a semaphore sized from config; tasks past capacity queue
// rather than fail.
type Orchestrator struct {
	registry   *Registry
	ingester   Ingester
	synth      *narrative.Synthesizer
	advisories *advisory.Table
	store      *store.Store
	genSem     chan struct{}
	resolver   func(*ingest.Ref, string) ingest.MetadataResolver
}

// New creates an orchestrator from config. The store may be nil;
// bundles are then held only in memory.
func New(cfg *config.Config, backend provider.Backend, st *store.Store) *Orchestrator {
	table := advisory.DefaultTable()
	if cfg.Pipeline.AdvisoryFile != "" {
		loaded, err := advisory.LoadTable(cfg.Pipeline.AdvisoryFile)
		if err != nil {
			log.Printf("WARNING: loading advisory file: %v, using built-in table", err)
		} else {
			table = loaded
		}
	}

	return &Orchestrator{
		registry:   NewRegistry(cfg.Tasks.TTL, cfg.Tasks.MaxEntries),
		ingester:   ingest.NewGitIngester(cfg.Pipeline.CloneDir, cfg.Pipeline.CloneTimeout),
		synth:      narrative.New(backend, cfg.Backend.MaxAttempts),
		advisories: table,
		store:      st,
		genSem:     make(chan struct{}, cfg.Pipeline.MaxConcurrentGenerations),
		resolver:   ingest.ResolverFor,
	}
}

// Close stops background maintenance. Running tasks finish on their own.
func (o *Orchestrator) Close() {
	o.registry.Close()
}

// Submit validates the reference synchronously, registers a task and
// starts the pipeline. Invalid references fail here, before a task id
// is ever handed out.
func (o *Orchestrator) Submit(rawRef, branch, credential string) (string, error) {
	ref, err := ingest.ParseRef(rawRef)
	if err != nil {
		return "", err
	}
	ref.Branch = branch

	t := newTask(uuid.NewString(), ref)
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	o.registry.Add(t)

	go o.run(ctx, t, credential)
	return t.id, nil
}

// Status returns the current snapshot for a task id.
func (o *Orchestrator) Status(id string) (Snapshot, error) {
	t, ok := o.registry.Get(id)
	if !ok {
		return Snapshot{}, ErrTaskNotFound
	}
	return t.Snapshot(), nil
}

// Result returns the bundle of a completed task.
func (o *Orchestrator) Result(id string) (*assemble.Bundle, error) {
	t, ok := o.registry.Get(id)
	if !ok {
		return nil, ErrTaskNotFound
	}
	if b, done := t.result(); done {
		return b, nil
	}
	snap := t.Snapshot()
	if snap.Status == StatusError {
		return nil, fmt.Errorf("task failed: %s", snap.Error)
	}
	return nil, ErrNotReady
}

// Cancel requests cancellation. The task observes it at the next stage
// boundary or inside a blocking call.
func (o *Orchestrator) Cancel(id string) error {
	t, ok := o.registry.Get(id)
	if !ok {
		return ErrTaskNotFound
	}
	if t.cancel != nil {
		t.cancel()
	}
	return nil
}

// Wait polls until the task reaches a terminal state, then returns its
// bundle or error.
func (o *Orchestrator) Wait(ctx context.Context, id string) (*assemble.Bundle, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		snap, err := o.Status(id)
		if err != nil {
			return nil, err
		}
		if snap.Status.Terminal() {
			return o.Result(id)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) run(ctx context.Context, t *Task, credential string) {
	t.transition(StatusCloning, "cloning repository")

	// The clone and the hosting-API metadata lookup are independent.
	// Metadata failures are non-fatal; only the clone can fail the task.
	var (
		path string
		meta *ingest.Metadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := o.ingester.Clone(gctx, t.ref, credential)
		if err != nil {
			return err
		}
		path = p
		return nil
	})
	g.Go(func() error {
		resolver := o.resolver(t.ref, credential)
		if resolver == nil {
			return nil
		}
		m, err := resolver.Resolve(gctx, t.ref)
		if err != nil {
			log.Printf("WARNING: resolving metadata for %s: %v", t.ref, err)
			return nil
		}
		meta = m
		return nil
	})
	if err := g.Wait(); err != nil {
		t.fail(err)
		return
	}
	defer func() {
		if err := o.ingester.Cleanup(path); err != nil {
			log.Printf("WARNING: cleaning up %s: %v", path, err)
		}
	}()

	if ctx.Err() != nil {
		t.fail(ctx.Err())
		return
	}

	t.transition(StatusAnalyzing, "analyzing repository")
	profile, err := analyzer.Analyze(path)
	if err != nil {
		t.fail(err)
		return
	}
	profile.RepoName = t.ref.Name
	if meta != nil && profile.Description == "" {
		profile.Description = meta.Description
	}

	health := report.ScoreHealth(profile)
	var (
		vulns      *report.VulnReport
		complexity *report.ComplexityReport
		diagrams   []diagram.Diagram
	)
	p := pool.New()
	p.Go(func() { vulns = report.ScanVulnerabilities(profile, o.advisories) })
	p.Go(func() { complexity = report.MeasureComplexity(profile) })
	p.Go(func() { diagrams = diagram.Synthesize(profile) })
	p.Wait()
	badges := report.BuildBadges(profile, health)

	if ctx.Err() != nil {
		t.fail(ctx.Err())
		return
	}

	t.transition(StatusGenerating, "waiting for a generation slot")
	select {
	case o.genSem <- struct{}{}:
	case <-ctx.Done():
		t.fail(ctx.Err())
		return
	}
	t.transition(StatusGenerating, "generating documentation")
	n, err := o.synth.Synthesize(ctx, profile, health)
	<-o.genSem
	if err != nil {
		t.fail(err)
		return
	}
	t.setProgress(80)

	bundle := assemble.Assemble(t.id, time.Now().UTC(), profile, n, health, vulns, complexity, badges, diagrams)
	if o.store != nil {
		if err := o.store.Save(context.Background(), bundle); err != nil {
			log.Printf("WARNING: persisting bundle %s: %v", t.id, err)
		}
	}

	message := "documentation generated"
	if n.DocsDegraded || n.ReviewDegraded {
		message = "documentation generated with degraded sections"
	}
	t.complete(bundle, message)
}
