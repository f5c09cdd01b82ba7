// Package session orchestrates one extraction run: it validates
// configuration, drives the pagination walker, deduplicates records as pages
// arrive, and always hands back a SessionReport, even a degenerate one.
package session

import (
	"context"
	"fmt"
	"log"

	"github.com/xthemadgenius/rain-papa/classify"
	"github.com/xthemadgenius/rain-papa/config"
	"github.com/xthemadgenius/rain-papa/mapper"
	"github.com/xthemadgenius/rain-papa/models"
	"github.com/xthemadgenius/rain-papa/paginate"
)

// Session owns one extraction run. A Session is single-use and
// single-threaded; concurrent searches need one Session each.
type Session struct {
	cfg    *config.Config
	walker *paginate.Walker
}

// New validates the configuration and wires the extraction pipeline.
// Configuration errors are fatal here, before any page is visited.
func New(cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.GetDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	specs := models.DefaultFieldSpecs()
	m := mapper.New(specs, mapper.ParseMode(cfg.LabelMatchMode), cfg.DebugMode)
	copts := classify.Options{
		MinContainerCount:   cfg.MinContainerCount,
		SimilarityTolerance: cfg.ContainerSimilarityThreshold,
		Labels:              classify.LabelLiterals(specs),
		Debug:               cfg.DebugMode,
	}

	return &Session{
		cfg:    cfg,
		walker: paginate.NewWalker(m, copts, cfg.MaxPages, cfg.DebugMode),
	}, nil
}

// Run walks the result set and returns the cumulative report. The report is
// always non-nil: navigation failures mark it aborted and keep whatever
// pages were already extracted.
func (s *Session) Run(ctx context.Context, nav paginate.Navigator) *models.SessionReport {
	report := &models.SessionReport{}
	seen := make(map[string]bool)

	walk := s.walker.Walk(ctx, nav)
	for _, page := range walk.Pages {
		report.PagesVisited++
		report.FragmentsSeen += page.FragmentCount
		report.DroppedRecords += page.FragmentCount - page.MappedCount

		for _, rec := range page.Records {
			key := rec.DedupKey()
			if seen[key] {
				report.DuplicateRecords++
				continue
			}
			seen[key] = true
			report.Records = append(report.Records, rec)
			report.ValidRecords++
		}
	}

	if walk.Status == paginate.StatusAborted {
		report.Aborted = true
		if walk.Err != nil {
			report.PageErrors = append(report.PageErrors,
				fmt.Sprintf("page %d: %v", report.PagesVisited+1, walk.Err))
			log.Printf("session: aborted, keeping %d record(s) from %d page(s): %v\n",
				report.ValidRecords, report.PagesVisited, walk.Err)
		}
	}

	return report
}
