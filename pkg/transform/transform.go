// pkg/transform/transform.go
package transform

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jafshop/medallion/pkg/cleaner"
	"github.com/jafshop/medallion/pkg/config"
	"github.com/jafshop/medallion/pkg/storage"
	"github.com/jafshop/medallion/pkg/table"
)

// EntityResult is the per-entity marker in the stage summary.
type EntityResult struct {
	Entity            string
	RowsIn            int
	RowsOut           int
	DuplicatesRemoved int
	CellsImputed      int
	OutputFile        string
	Error             string // empty on success
	DataQuality       bool   // true when Error is a data-quality failure
}

// Summary is the structured result of a silver transformation run.
type Summary struct {
	Entities map[string]EntityResult
	Duration time.Duration
}

// Failed returns the entities whose cleaning failed.
func (s *Summary) Failed() []string {
	var failed []string
	for name, r := range s.Entities {
		if r.Error != "" {
			failed = append(failed, name)
		}
	}
	return failed
}

// Transformer runs the Silver stage: every bronze CSV is cleaned by its
// entity policy (or the generic cleaner) and written to the silver
// folder. Entity cleaners share no mutable state, so they run
// concurrently.
type Transformer struct {
	cfg      *config.Config
	cleaner  *cleaner.Cleaner
	policies map[string]cleaner.CleaningPolicy
	logger   *zap.Logger
}

// NewTransformer creates a Transformer with the built-in entity
// policies.
func NewTransformer(cfg *config.Config, logger *zap.Logger) (*Transformer, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	c, err := cleaner.NewCleaner(logger)
	if err != nil {
		return nil, err
	}

	return &Transformer{
		cfg:      cfg,
		cleaner:  c,
		policies: cleaner.BuiltinPolicies(),
		logger:   logger,
	}, nil
}

// WithPolicy registers or overrides the policy used for a bronze file
// basename (without extension).
func (t *Transformer) WithPolicy(entity string, policy cleaner.CleaningPolicy) *Transformer {
	t.policies[entity] = policy
	return t
}

// Run cleans every bronze CSV into the silver layer. A data-quality
// failure marks that entity as failed in the summary but does not abort
// the stage; inability to read the bronze folder or write silver output
// does.
func (t *Transformer) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	files, err := storage.ListCSVFiles(t.cfg.BronzeFolder)
	if err != nil {
		return nil, fmt.Errorf("bronze layer unavailable: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files in bronze folder %s", t.cfg.BronzeFolder)
	}

	summary := &Summary{Entities: make(map[string]EntityResult, len(files))}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range files {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, fatal := t.cleanFile(name)
			mu.Lock()
			summary.Entities[result.Entity] = result
			mu.Unlock()
			return fatal
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	summary.Duration = time.Since(start)
	t.logger.Info("Silver transformation complete",
		zap.Int("entities", len(summary.Entities)),
		zap.Strings("failed", summary.Failed()),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// cleanFile processes one bronze CSV. The returned error is non-nil
// only for pipeline-level failures (silver layer unwritable); entity
// failures are reflected in the result marker.
func (t *Transformer) cleanFile(filename string) (EntityResult, error) {
	entity := strings.TrimSuffix(filename, ".csv")
	result := EntityResult{Entity: entity}

	raw, err := storage.ReadTable(filepath.Join(t.cfg.BronzeFolder, filename))
	if err != nil {
		t.logger.Error("Failed to read bronze file", zap.String("file", filename), zap.Error(err))
		result.Error = err.Error()
		return result, nil
	}
	result.RowsIn = raw.RowCount()

	cleaned, cleanResult, err := t.cleanEntity(raw, entity)
	if err != nil {
		t.logger.Error("Entity cleaning failed",
			zap.String("entity", entity),
			zap.Bool("dataQuality", cleaner.IsDataQuality(err)),
			zap.Error(err))
		result.Error = err.Error()
		result.DataQuality = cleaner.IsDataQuality(err)
		return result, nil
	}

	outName := entity + "_clean.csv"
	outPath := filepath.Join(t.cfg.SilverFolder, outName)
	if err := storage.WriteTable(cleaned, outPath); err != nil {
		return result, fmt.Errorf("write silver file %s: %w", outName, err)
	}

	result.RowsOut = cleanResult.RowsOut
	result.DuplicatesRemoved = cleanResult.DuplicatesRemoved
	result.CellsImputed = cleanResult.CellsImputed
	result.OutputFile = outName
	return result, nil
}

func (t *Transformer) cleanEntity(raw table.Table, entity string) (table.Table, cleaner.Result, error) {
	if policy, ok := t.policies[entity]; ok {
		return t.cleaner.Clean(raw, policy)
	}
	return t.cleaner.CleanGeneric(raw, entity)
}
