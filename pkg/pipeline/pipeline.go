// pkg/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafshop/medallion/pkg/analytics"
	"github.com/jafshop/medallion/pkg/config"
	"github.com/jafshop/medallion/pkg/ingest"
	"github.com/jafshop/medallion/pkg/storage"
	"github.com/jafshop/medallion/pkg/transform"
)

// RunSummary is the structured result of a full pipeline run.
type RunSummary struct {
	RunID     string
	Ingest    *ingest.Summary
	Transform *transform.Summary
	Analytics *analytics.Summary
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Complete marks the run as finished and calculates its duration.
func (s *RunSummary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// Pipeline orchestrates the three batch stages: Bronze ingestion,
// Silver transformation and Gold analytics. Each stage runs to
// completion before the next begins; the pipeline holds no long-lived
// state between stages beyond the persisted layer files.
type Pipeline struct {
	cfg    *config.Config
	store  storage.ObjectStore
	logger *zap.Logger
}

// New creates a Pipeline. When the config carries a remote endpoint an
// Azure object store is constructed for ticket ingestion.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	p := &Pipeline{cfg: cfg, logger: logger}
	if cfg.HasRemote() {
		store, err := storage.NewAzureStore(cfg.RemoteEndpoint, cfg.RemoteToken, logger)
		if err != nil {
			return nil, fmt.Errorf("configure remote object store: %w", err)
		}
		p.store = store
	}
	return p, nil
}

// WithStore overrides the remote object store (used by tests and
// alternative backends).
func (p *Pipeline) WithStore(store storage.ObjectStore) *Pipeline {
	p.store = store
	return p
}

// RunIngest executes the Bronze stage.
func (p *Pipeline) RunIngest(ctx context.Context) (*ingest.Summary, error) {
	ingestor, err := ingest.NewIngestor(p.cfg, p.store, p.logger)
	if err != nil {
		return nil, err
	}
	return ingestor.Run(ctx)
}

// RunTransform executes the Silver stage.
func (p *Pipeline) RunTransform(ctx context.Context) (*transform.Summary, error) {
	transformer, err := transform.NewTransformer(p.cfg, p.logger)
	if err != nil {
		return nil, err
	}
	return transformer.Run(ctx)
}

// RunAnalytics executes the Gold stage.
func (p *Pipeline) RunAnalytics(ctx context.Context) (*analytics.Summary, error) {
	analyzer, err := analytics.NewAnalyzer(p.cfg, p.logger)
	if err != nil {
		return nil, err
	}
	return analyzer.Run(ctx)
}

// Run executes the full Bronze → Silver → Gold pipeline. Stage-local
// failures are reflected in the stage summaries; a stage error that
// leaves the next stage without input aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}
	logger := p.logger.With(zap.String("runID", summary.RunID))
	logger.Info("Pipeline starting",
		zap.String("bronze", p.cfg.BronzeFolder),
		zap.String("silver", p.cfg.SilverFolder),
		zap.String("gold", p.cfg.GoldFolder))

	ingestSummary, err := p.RunIngest(ctx)
	summary.Ingest = ingestSummary
	if err != nil {
		summary.Complete()
		return summary, fmt.Errorf("bronze stage (%s): %w", Classify(err), err)
	}
	logger.Info("Bronze stage complete", zap.Int("files", len(ingestSummary.Files)))

	transformSummary, err := p.RunTransform(ctx)
	summary.Transform = transformSummary
	if err != nil {
		summary.Complete()
		return summary, fmt.Errorf("silver stage (%s): %w", Classify(err), err)
	}
	logger.Info("Silver stage complete",
		zap.Int("entities", len(transformSummary.Entities)),
		zap.Strings("failed", transformSummary.Failed()))

	analyticsSummary, err := p.RunAnalytics(ctx)
	summary.Analytics = analyticsSummary
	if err != nil {
		summary.Complete()
		return summary, fmt.Errorf("gold stage (%s): %w", Classify(err), err)
	}

	summary.Complete()
	logger.Info("Pipeline complete",
		zap.Duration("duration", summary.Duration),
		zap.Int("goldOutputs", len(analyticsSummary.Outputs)))
	return summary, nil
}
