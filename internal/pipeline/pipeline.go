// internal/pipeline/pipeline.go
package pipeline

import (
	"time"

	"maginhawa-directory/internal/collection"
	stderrors "maginhawa-directory/internal/common/errors"
	"maginhawa-directory/internal/common/logger"
	"maginhawa-directory/internal/common/metrics"
	"maginhawa-directory/internal/index"
	"maginhawa-directory/internal/place"
	"maginhawa-directory/internal/publish"
	"maginhawa-directory/internal/stats"
	"maginhawa-directory/internal/validation"
)

// Pipeline runs the validate → build → publish batch over the record
// collection. Every run starts from a fresh read of the records directory;
// nothing is cached between runs.
type Pipeline struct {
	recordsDir    string
	indexArtifact string
	statsArtifact string
	logger        logger.Logger
	now           func() time.Time
}

func New(recordsDir, indexArtifact, statsArtifact string, log logger.Logger) *Pipeline {
	return &Pipeline{
		recordsDir:    recordsDir,
		indexArtifact: indexArtifact,
		statsArtifact: statsArtifact,
		logger:        log.WithFields(map[string]interface{}{"recordsDir": recordsDir}),
		now:           time.Now,
	}
}

// WithClock overrides the stats timestamp source, for tests.
func (pl *Pipeline) WithClock(now func() time.Time) *Pipeline {
	pl.now = now
	return pl
}

// Validate reads the collection and validates every record. Collection-level
// errors (missing, empty, unreadable directory) are returned as-is and are
// fatal for the builders.
func (pl *Pipeline) Validate() (*validation.Summary, error) {
	files, err := collection.Read(pl.recordsDir)
	if err != nil {
		return nil, err
	}
	return validation.ValidateCollection(files), nil
}

// loadValid validates the collection and returns the valid records in file
// order. Invalid records are logged and excluded; they never abort the run —
// unless nothing survives, in which case the run is as fatal as an empty
// directory and no artifact may be written.
func (pl *Pipeline) loadValid() ([]place.Place, error) {
	summary, err := pl.Validate()
	if err != nil {
		return nil, err
	}

	if summary.Valid == 0 {
		pl.logger.Error("every record in the collection is invalid, aborting", map[string]interface{}{
			"total": summary.Total,
		})
		return nil, stderrors.NewNoValidRecordsError(pl.recordsDir, summary.Total)
	}

	if !summary.AllValid() {
		pl.logger.Warn("collection contains invalid records, building from valid records only", map[string]interface{}{
			"total":   summary.Total,
			"invalid": summary.Invalid,
		})
		for _, failure := range summary.Failures {
			pl.logger.Warn("invalid record", map[string]interface{}{
				"file":   failure.File,
				"errors": len(failure.Errors),
			})
		}
	}

	return summary.Places(), nil
}

// BuildIndex regenerates and publishes the index artifact. It aborts without
// writing when the collection is empty, missing, or unreadable.
func (pl *Pipeline) BuildIndex() (*index.Index, error) {
	start := time.Now()

	places, err := pl.loadValid()
	if err != nil {
		metrics.BuilderRuns.WithLabelValues("index", "error").Inc()
		return nil, err
	}

	idx := index.Build(places)
	if err := publish.WriteArtifact(pl.indexArtifact, idx); err != nil {
		metrics.BuilderRuns.WithLabelValues("index", "error").Inc()
		return nil, err
	}

	metrics.BuilderRuns.WithLabelValues("index", "success").Inc()
	metrics.BuilderDuration.WithLabelValues("index").Observe(time.Since(start).Seconds())

	pl.logger.Info("index artifact published", map[string]interface{}{
		"artifact": pl.indexArtifact,
		"entries":  len(idx.Places),
	})
	return idx, nil
}

// BuildStats regenerates and publishes the stats artifact with the same
// fatal-on-collection-error semantics as BuildIndex.
func (pl *Pipeline) BuildStats() (*stats.Stats, error) {
	start := time.Now()

	places, err := pl.loadValid()
	if err != nil {
		metrics.BuilderRuns.WithLabelValues("stats", "error").Inc()
		return nil, err
	}

	st := stats.Build(places, pl.now())
	if err := publish.WriteArtifact(pl.statsArtifact, st); err != nil {
		metrics.BuilderRuns.WithLabelValues("stats", "error").Inc()
		return nil, err
	}

	metrics.BuilderRuns.WithLabelValues("stats", "success").Inc()
	metrics.BuilderDuration.WithLabelValues("stats").Observe(time.Since(start).Seconds())

	pl.logger.Info("stats artifact published", map[string]interface{}{
		"artifact": pl.statsArtifact,
		"places":   st.TotalPlaces,
	})
	return st, nil
}

// Build runs the index builder then the stats builder, the order the
// publish hook uses after accepted changes land on the main collection.
func (pl *Pipeline) Build() (*index.Index, *stats.Stats, error) {
	idx, err := pl.BuildIndex()
	if err != nil {
		return nil, nil, err
	}
	st, err := pl.BuildStats()
	if err != nil {
		return nil, nil, err
	}
	return idx, st, nil
}
