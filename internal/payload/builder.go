package payload

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"atlaswifi/internal/filter"
	"atlaswifi/internal/mac"
	"atlaswifi/internal/selection"
	"atlaswifi/internal/wifi"
)

// Options replaces the build-time switches of embedded targets
type Options struct {
	// CheckParameters enables nil, list size and MAC separator checks
	CheckParameters bool
	// ReportErrors returns failures to the caller; when false they are
	// only logged and Build returns the reset payload with a nil error
	ReportErrors bool
}

// DefaultOptions enables every check
func DefaultOptions() Options {
	return Options{
		CheckParameters: true,
		ReportErrors:    true,
	}
}

// Config is the filter and sorting setup used by Build
type Config struct {
	Filters filter.Set
	Sorting selection.Sorting
}

// Observer receives pipeline outcomes
type Observer interface {
	AccessPointsFiltered(valid, filteredOut int)
	PayloadBuilt(p Payload)
	BuildFailed(err error)
}

// Builder turns access point lists into uplink payloads. It holds the
// configuration and selection scratch space for one pipeline; independent
// builders share nothing. Methods are safe for concurrent use.
type Builder struct {
	logger   *logrus.Logger
	options  Options
	observer Observer

	mu     sync.Mutex
	config Config
	filter *filter.Engine
	slots  selection.Slots
}

// NewBuilder creates a builder with no filters and list-order selection
func NewBuilder(options Options, logger *logrus.Logger) *Builder {
	engine := filter.NewEngine(logger)
	engine.CheckParameters = options.CheckParameters

	b := &Builder{
		logger:  logger,
		options: options,
		filter:  engine,
		config: Config{
			Filters: 0,
			Sorting: selection.SortingNone,
		},
	}
	b.slots.Reset()
	return b
}

// SetObserver registers an observer for pipeline outcomes
func (b *Builder) SetObserver(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observer = o
}

// Configure replaces the filter set and sorting mode. An unknown sorting
// mode is rejected and the previous configuration stays in place.
func (b *Builder) Configure(filters filter.Set, sorting selection.Sorting) error {
	if !sorting.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSorting, sorting)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Swap both settings at once
	b.config = Config{Filters: filters, Sorting: sorting}
	b.filter.Filters = filters

	b.logger.WithFields(logrus.Fields{
		"filters": filters.String(),
		"sorting": sorting.String(),
	}).Debug("Payload builder configured")

	return nil
}

// Config returns the active configuration
func (b *Builder) Config() Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.config
}

// Build filters list, selects the best access points and encodes their MAC
// addresses into a payload. Selected access points are marked Sent, so
// repeated calls on the same list move on to the next candidates.
// On failure the payload is all zero with a zero count.
func (b *Builder) Build(list wifi.List) (Payload, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.build(list)
	if err != nil {
		// Payload stays in its reset state
		if b.observer != nil {
			b.observer.BuildFailed(err)
		}
		b.logger.WithError(err).WithField("kind", Kind(err)).Debug("Payload build failed")
		if !b.options.ReportErrors {
			return Payload{}, nil
		}
		return Payload{}, err
	}

	if b.observer != nil {
		b.observer.PayloadBuilt(p)
	}
	b.logger.WithFields(logrus.Fields{
		"payload":   p.Hex(),
		"mac_count": p.Count,
	}).Debug("Payload built")

	return p, nil
}

func (b *Builder) build(list wifi.List) (Payload, error) {
	var p Payload

	// Check parameters
	if b.options.CheckParameters {
		if list == nil {
			return p, fmt.Errorf("access point list: %w", ErrNullParameter)
		}
		if len(list) == 0 || len(list) > wifi.MaxAccessPoints {
			return p, fmt.Errorf("%w: %d entries", ErrAccessPointListSize, len(list))
		}
	}

	// Apply filters, reporting decisions even when the pass aborts
	validBefore := list.Count(wifi.StatusValid)
	filteredBefore := list.Count(wifi.StatusFilteredOut)

	err := b.filter.Apply(list)

	if b.observer != nil {
		b.observer.AccessPointsFiltered(
			list.Count(wifi.StatusValid)-validBefore,
			list.Count(wifi.StatusFilteredOut)-filteredBefore,
		)
	}
	if err != nil {
		return Payload{}, err
	}

	// Select the best indexes
	b.slots = selection.Select(list, b.config.Sorting)

	b.logger.WithFields(logrus.Fields{
		"sorting":  b.config.Sorting.String(),
		"selected": b.slots.Filled(),
	}).Debug("Access points selected")

	// Encode selected addresses in slot order
	for _, idx := range b.slots {
		if idx == selection.None {
			continue
		}
		ap := list[idx]
		addr, err := mac.Decode(ap.MACAddress, b.options.CheckParameters)
		if err != nil {
			return Payload{}, fmt.Errorf("access point %d: %w", idx, err)
		}
		p.put(addr)
		ap.Status = wifi.StatusSent
	}

	// At least one address is required
	if p.Count == 0 {
		return Payload{}, ErrNoneValidAccessPoint
	}

	return p, nil
}
