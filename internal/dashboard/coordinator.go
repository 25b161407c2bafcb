package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/seuros/covidboard/internal/countries"
	"github.com/seuros/covidboard/internal/diseasesh"
	"github.com/seuros/covidboard/internal/logging"
	"github.com/seuros/covidboard/internal/stats"
)

var (
	// ErrSuperseded is returned when a newer selection started before this
	// one's response arrived. The response is dropped.
	ErrSuperseded = errors.New("selection superseded by a newer request")

	ErrInvalidCountry = errors.New("invalid country selection")
	ErrInvalidMetric  = errors.New("invalid metric type")
)

// Fetcher is the statistics source. *diseasesh.Client satisfies it.
type Fetcher interface {
	Global(ctx context.Context) (stats.CountryRecord, error)
	Countries(ctx context.Context) ([]stats.CountryRecord, error)
	Country(ctx context.Context, code string) (stats.CountryRecord, error)
	History(ctx context.Context, days int) (stats.Timeline, error)
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithHistoryDays sets how many days of history feed the chart.
func WithHistoryDays(days int) Option {
	return func(c *Coordinator) {
		if days > 0 {
			c.historyDays = days
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// Coordinator owns one dashboard's State and changes it only through
// OnInit, OnCountrySelect, OnMetricTypeSelect and DismissNotice.
type Coordinator struct {
	fetcher     Fetcher
	historyDays int
	log         *zap.Logger

	mu    sync.RWMutex
	state State

	// selection is bumped by every OnCountrySelect; a response commits only
	// while its token is still the latest.
	selection atomic.Uint64
	// committed is the token of the last selection that changed state.
	// Guarded by mu.
	committed uint64
}

// NewCoordinator creates a coordinator in the initial worldwide state.
func NewCoordinator(f Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:     f,
		historyDays: 120,
		log:         logging.With(zap.String("component", "dashboard")),
		state:       NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// OnInit loads the global snapshot, the country list and the history
// concurrently. Each fetch commits its own part of the state, so a failure
// in one leaves the others intact.
func (c *Coordinator) OnInit(ctx context.Context) error {
	startToken := c.selection.Load()

	var globalErr, countriesErr, historyErr error
	var wg conc.WaitGroup

	wg.Go(func() {
		record, err := c.fetcher.Global(ctx)
		if err != nil {
			globalErr = fmt.Errorf("load worldwide snapshot: %w", err)
			c.fail(globalErr)
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		// A country committed while this was in flight wins. Failed or
		// superseded selections leave the worldwide snapshot to us.
		if c.committed > startToken {
			return
		}
		c.state.CountryInfo = record
	})

	wg.Go(func() {
		records, err := c.fetcher.Countries(ctx)
		if err != nil {
			countriesErr = fmt.Errorf("load countries: %w", err)
			c.fail(countriesErr)
			return
		}
		options := selectorOptions(records)
		table := stats.SortData(records)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.Countries = options
		c.state.TableData = table
		c.state.MapCountries = records
	})

	wg.Go(func() {
		timeline, err := c.fetcher.History(ctx, c.historyDays)
		if err != nil {
			historyErr = fmt.Errorf("load history: %w", err)
			c.fail(historyErr)
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.Timeline = timeline
	})

	wg.Wait()
	return multierr.Combine(globalErr, countriesErr, historyErr)
}

// OnCountrySelect switches the dashboard to "worldwide" or an ISO code.
// On success the snapshot, selection and viewport change together; on
// failure they stay as they were and a notice is raised.
func (c *Coordinator) OnCountrySelect(ctx context.Context, code string) error {
	key, err := selectionKey(code)
	if err != nil {
		return err
	}

	token := c.selection.Add(1)

	var record stats.CountryRecord
	if key == Worldwide {
		record, err = c.fetcher.Global(ctx)
	} else {
		record, err = c.fetcher.Country(ctx, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.selection.Load() {
		c.log.Debug("dropping stale selection response", zap.String("country", key))
		return ErrSuperseded
	}
	if err != nil {
		err = fmt.Errorf("select %s: %w", key, err)
		c.state.Notice = noticeFor(err)
		c.log.Warn("country selection failed", zap.String("country", key), zap.Error(err))
		return err
	}

	c.committed = token
	c.state.SelectedCountry = key
	c.state.CountryInfo = record
	if key == Worldwide {
		c.state.MapCenter = WorldCenter
		c.state.MapZoom = WorldZoom
	} else {
		loc := record.Location()
		c.state.MapCenter = LatLng{Lat: loc.Lat, Lng: loc.Long}
		c.state.MapZoom = CountryZoom
	}
	return nil
}

// OnMetricTypeSelect changes the highlighted metric. It never fetches.
func (c *Coordinator) OnMetricTypeSelect(metric string) error {
	m, err := stats.ParseMetric(metric)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMetric, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CasesType = m
	return nil
}

// DismissNotice clears the current failure notice, if any.
func (c *Coordinator) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Notice = nil
}

func (c *Coordinator) fail(err error) {
	c.log.Warn("dashboard fetch failed", zap.Error(err))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Notice = noticeFor(err)
}

func selectionKey(raw string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(raw), Worldwide) {
		return Worldwide, nil
	}
	code, err := countries.NormalizeCode(raw)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidCountry, raw, err)
	}
	return code, nil
}

func noticeFor(err error) *Notice {
	kind := diseasesh.KindOf(err)
	var message string
	switch kind {
	case diseasesh.KindNetwork:
		message = "Statistics service is unreachable. Showing the last data we have."
	case diseasesh.KindStatus:
		message = "Statistics service rejected the request. Showing the last data we have."
	case diseasesh.KindMalformed:
		message = "Statistics service returned data we could not read. Showing the last data we have."
	default:
		message = "Could not update statistics."
	}
	return &Notice{Kind: kind.String(), Message: message}
}
