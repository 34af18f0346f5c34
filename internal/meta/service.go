package meta

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrAdvisoryUnavailable marks a source that could not supply top decks.
var ErrAdvisoryUnavailable = errors.New("meta advisory unavailable")

// Advisory is the result of a meta lookup. It is always returned; failures
// surface as Warnings and an empty deck list.
type Advisory struct {
	Format    string     `json:"format"`
	Decks     []MetaDeck `json:"decks"`
	Source    string     `json:"source,omitempty"`
	Cached    bool       `json:"cached"`
	FetchedAt time.Time  `json:"fetched_at"`
	Warnings  []string   `json:"warnings,omitempty"`

	errs []error
}

// Err joins the failures behind Warnings. Each wraps ErrAdvisoryUnavailable.
func (a *Advisory) Err() error {
	return errors.Join(a.errs...)
}

func (a *Advisory) warn(err error) {
	a.errs = append(a.errs, err)
	a.Warnings = append(a.Warnings, err.Error())
}

// ServiceConfig configures the meta service.
type ServiceConfig struct {
	// Sources are consulted concurrently; the first in order with decks wins.
	// Default: mtgmeta.io, MTGGoldfish, MTGTop8.
	Sources []Source

	// Cache defaults to an in-memory cache.
	Cache Cache

	// CacheTTL defaults to 24 hours.
	CacheTTL time.Duration

	// Timeout bounds one lookup across all sources. Default: 15 seconds.
	Timeout time.Duration

	// Limit is the number of decks returned. Default: 5.
	Limit int

	Logger *zap.Logger
}

// Service combines top-deck sources behind a cache.
type Service struct {
	sources  []Source
	cache    Cache
	cacheTTL time.Duration
	timeout  time.Duration
	limit    int
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new meta service.
func NewService(config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	s := &Service{
		sources:  config.Sources,
		cache:    config.Cache,
		cacheTTL: config.CacheTTL,
		timeout:  config.Timeout,
		limit:    config.Limit,
		logger:   config.Logger,
		now:      time.Now,
	}
	if s.sources == nil {
		s.sources = []Source{NewMTGMetaClient(nil), NewGoldfishClient(nil), NewTop8Client(nil)}
	}
	if s.cache == nil {
		s.cache = NewMemoryCache()
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = DefaultCacheTTL
	}
	if s.timeout <= 0 {
		s.timeout = 15 * time.Second
	}
	if s.limit <= 0 {
		s.limit = DefaultLimit
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

type sourceResult struct {
	decks []MetaDeck
	err   error
}

// TopDecks returns up to the configured number of top decks for format.
// It never fails: source errors become warnings on the advisory.
func (s *Service) TopDecks(ctx context.Context, format string) *Advisory {
	if cached, ok, err := s.cache.Get(ctx, format); err != nil {
		s.logger.Warn("meta cache read failed", zap.String("format", format), zap.Error(err))
	} else if ok {
		cached.Cached = true
		return cached
	}

	advisory := &Advisory{Format: format, Decks: []MetaDeck{}, FetchedAt: s.now()}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]sourceResult, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			decks, err := src.TopDecks(fetchCtx, format)
			results[i] = sourceResult{decks: decks, err: err}
		}(i, src)
	}
	wg.Wait()

	for i, res := range results {
		name := s.sources[i].Name()
		if res.err != nil {
			err := fmt.Errorf("%w: %s: %v", ErrAdvisoryUnavailable, name, res.err)
			advisory.warn(err)
			s.logger.Warn("meta source failed", zap.String("source", name), zap.String("format", format), zap.Error(res.err))
			continue
		}
		if advisory.Source == "" && len(res.decks) > 0 {
			advisory.Source = name
			advisory.Decks = res.decks
		}
	}

	if advisory.Source == "" {
		if len(advisory.errs) == 0 {
			advisory.warn(fmt.Errorf("%w: no decks listed for %q", ErrAdvisoryUnavailable, format))
		}
		return advisory
	}

	if len(advisory.Decks) > s.limit {
		advisory.Decks = advisory.Decks[:s.limit]
	}

	// Warnings describe this fetch only.
	stored := *advisory
	stored.Warnings, stored.errs = nil, nil
	if err := s.cache.Set(ctx, format, &stored, s.cacheTTL); err != nil {
		s.logger.Warn("meta cache write failed", zap.String("format", format), zap.Error(err))
	}

	return advisory
}
