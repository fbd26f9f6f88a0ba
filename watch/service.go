// Package watch continuously re-validates templates as they change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dislovemartin/prompts/corpus"
	"github.com/dislovemartin/prompts/events"
	"github.com/dislovemartin/prompts/metrics"
	"github.com/dislovemartin/prompts/report"
	"github.com/dislovemartin/prompts/validator"
)

// Options configure a Service.
type Options struct {
	// Root is the watched corpus directory.
	Root string
	// Watch configures debounce and file filtering.
	Watch corpus.WatchConfig
	// Ruleset scores changed templates. Defaults to the built-in one.
	Ruleset *validator.Ruleset
	// OutputDir receives refreshed validation reports.
	OutputDir string
	// Metrics receives counters and score observations. Optional.
	Metrics *metrics.Metrics
	// Publisher emits report events. Nil disables publishing.
	Publisher *events.Publisher
	Logger    *slog.Logger
}

// Service validates templates as the watcher reports changes.
type Service struct {
	watcher   *corpus.Watcher
	ruleset   *validator.Ruleset
	renderer  *report.Renderer
	writer    *report.Writer
	metrics   *metrics.Metrics
	publisher *events.Publisher
	logger    *slog.Logger
}

// New creates a watch service rooted at opts.Root.
func New(opts Options) (*Service, error) {
	if opts.Ruleset == nil {
		opts.Ruleset = validator.DefaultRuleset()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := corpus.NewWatcher(opts.Watch, opts.Root, logger)
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if opts.Metrics != nil {
		watcher.OnDrop(opts.Metrics.EventsDropped.Inc)
	}

	return &Service{
		watcher:   watcher,
		ruleset:   opts.Ruleset,
		renderer:  report.NewRenderer(),
		writer:    report.NewWriter(opts.OutputDir),
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		logger:    logger,
	}, nil
}

// Run watches until ctx is cancelled. Every create or modify event
// triggers a re-validation; failures are logged and never stop the
// loop.
func (s *Service) Run(ctx context.Context) error {
	if err := s.watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer s.watcher.Stop()

	s.logger.Info("watching corpus for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-s.watcher.Events():
			if !ok {
				return nil
			}
			s.handle(event)
		}
	}
}

// handle processes one watch event.
func (s *Service) handle(event corpus.Event) {
	if event.Operation == corpus.OpDelete {
		s.logger.Info("template removed", "path", event.Path)
		return
	}

	rep, err := s.validate(event.AbsPath)
	if err != nil {
		s.logger.Warn("validation failed", "path", event.Path, "error", err)
		s.count("error")
		return
	}

	s.count("ok")
	if s.metrics != nil {
		s.metrics.ValidationScore.Observe(float64(rep.Percent))
	}

	s.logger.Info("template validated",
		"path", event.Path,
		"percent", rep.Percent,
		"recommendation", rep.Recommendation)

	if err := s.publisher.Publish(rep); err != nil {
		s.logger.Warn("publish report event", "path", event.Path, "error", err)
		if s.metrics != nil {
			s.metrics.PublishesTotal.WithLabelValues("error").Inc()
		}
	} else if s.publisher != nil && s.metrics != nil {
		s.metrics.PublishesTotal.WithLabelValues("ok").Inc()
	}
}

// validate scores one template and rewrites its report.
func (s *Service) validate(path string) (*validator.DocumentReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	rep := validator.BuildReport(path, string(content), s.ruleset)

	if _, err := s.writer.WriteDocument(path, "-validation.md", s.renderer.RenderValidation(rep)); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	return rep, nil
}

func (s *Service) count(status string) {
	if s.metrics != nil {
		s.metrics.ValidationsTotal.WithLabelValues(status).Inc()
	}
}
