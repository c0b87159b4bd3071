package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"atlaswifi/internal/filter"
	"atlaswifi/internal/journal"
	"atlaswifi/internal/metrics"
	"atlaswifi/internal/payload"
	"atlaswifi/internal/scan"
	"atlaswifi/internal/selection"
	"atlaswifi/internal/wifi"
)

// Application builds uplink payloads from one scan file
type Application struct {
	config   Config
	logger   *logrus.Logger
	out      io.Writer
	builder  *payload.Builder
	registry *prometheus.Registry
	rotator  *journal.Rotator
	journal  *journal.Writer
	now      func() time.Time
}

// NewApplication creates a new application instance writing payload lines to out
func NewApplication(config Config, out io.Writer) *Application {
	logger := logrus.New()
	if config.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Application{
		config: config,
		logger: logger,
		out:    out,
		now:    time.Now,
	}
}

// Logger returns the application logger
func (app *Application) Logger() *logrus.Logger {
	return app.logger
}

// Run loads the scan and builds one payload per attempt. Later attempts
// reuse the same list, so each one picks candidates not sent before. Running
// out of candidates ends the run early; it is only an error on the first
// attempt.
func (app *Application) Run() error {
	if err := Validate(app.config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	app.logger.WithFields(logrus.Fields{
		"version":    Version,
		"git_commit": GitCommit,
		"scan":       app.config.ScanFile,
	}).Debug("Starting payload builder")

	if err := app.initializeComponents(); err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer app.shutdown()

	list, err := scan.Load(app.config.ScanFile)
	if err != nil {
		return err
	}

	app.logger.WithField("access_points", len(list)).Info("Scan loaded")

	built, err := app.runAttempts(list)
	app.reportStatistics(list)
	if err != nil {
		return err
	}

	app.logger.WithField("payloads", built).Info("Payload build finished")
	return nil
}

// initializeComponents initializes the builder, metrics and journal
func (app *Application) initializeComponents() error {
	filters, err := filter.Parse(app.config.Filters...)
	if err != nil {
		return err
	}
	sorting, err := selection.ParseSorting(app.config.Sorting)
	if err != nil {
		return err
	}

	app.builder = payload.NewBuilder(payload.Options{
		CheckParameters: app.config.CheckParameters,
		ReportErrors:    app.config.ReportErrors,
	}, app.logger)

	if err := app.builder.Configure(filters, sorting); err != nil {
		return err
	}

	app.registry = prometheus.NewRegistry()
	collector, err := metrics.NewCollector(app.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	app.builder.SetObserver(collector)

	if app.config.JournalDir == "" {
		return nil
	}

	app.rotator, err = journal.NewRotator(app.config.JournalDir, app.config.JournalUTC, app.logger)
	if err != nil {
		return err
	}
	app.journal = journal.NewWriter(app.rotator, app.logger)

	if app.config.JournalMaxDays > 0 {
		if _, err := app.rotator.Cleanup(app.config.JournalMaxDays); err != nil {
			app.logger.WithError(err).Warn("Journal cleanup failed")
		}
	}

	return nil
}

func (app *Application) runAttempts(list wifi.List) (int, error) {
	built := 0

	for attempt := 1; attempt <= app.config.Attempts; attempt++ {
		p, err := app.builder.Build(list)
		if errors.Is(err, payload.ErrNoneValidAccessPoint) && built > 0 {
			app.logger.WithField("attempt", attempt).Info("No access point left for further attempts")
			break
		}
		if err != nil {
			return built, fmt.Errorf("attempt %d: %w", attempt, err)
		}
		if p.Count == 0 {
			// Errors are not reported in this mode; nothing was encoded
			app.logger.WithField("attempt", attempt).Warn("Empty payload, stopping")
			break
		}

		built++
		if _, err := fmt.Fprintf(app.out, "%s %d\n", p.Hex(), p.Count); err != nil {
			return built, fmt.Errorf("failed to write payload: %w", err)
		}

		if app.journal != nil {
			app.rotator.CheckRotation()
			if err := app.journal.WritePayload(app.now(), p); err != nil {
				return built, err
			}
		}

		macs := make([]string, 0, p.Count)
		for _, addr := range p.MACs() {
			macs = append(macs, addr.String())
		}
		app.logger.WithFields(logrus.Fields{
			"attempt":   attempt,
			"mac_count": p.Count,
			"macs":      macs,
		}).Info("Payload built")
	}

	return built, nil
}

// reportStatistics logs list status totals and pipeline counters
func (app *Application) reportStatistics(list wifi.List) {
	fields := logrus.Fields{
		"new":          list.Count(wifi.StatusNew),
		"filtered_out": list.Count(wifi.StatusFilteredOut),
		"valid":        list.Count(wifi.StatusValid),
		"sent":         list.Count(wifi.StatusSent),
	}

	families, err := app.registry.Gather()
	if err != nil {
		app.logger.WithError(err).Warn("Failed to gather metrics")
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += "." + lp.GetValue()
			}
			fields[name] = m.GetCounter().GetValue()
		}
	}

	app.logger.WithFields(fields).Debug("Statistics")
}

// shutdown closes the journal
func (app *Application) shutdown() {
	if app.rotator == nil {
		return
	}
	if err := app.rotator.Close(); err != nil {
		app.logger.WithError(err).Error("Failed to close journal")
	}
}
