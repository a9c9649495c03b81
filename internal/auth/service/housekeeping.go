package service

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/tokenstore"
)

// HousekeepingService periodically sweeps expired codes and access tokens
// out of the token store so it doesn't grow without bound.
type HousekeepingService struct {
	Tokens   *tokenstore.Store
	Logger   *slog.Logger
	Window   time.Duration
	Interval time.Duration

	runs  prometheus.Counter
	swept *prometheus.CounterVec

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a sweeper for entries older than window.
// A non-positive interval defaults to half the window. Counters are
// registered with reg when it is non-nil.
func NewHousekeepingService(
	tokens *tokenstore.Store,
	logger *slog.Logger,
	window, interval time.Duration,
	reg prometheus.Registerer,
) *HousekeepingService {
	if interval <= 0 {
		interval = window / 2
	}
	if interval <= 0 {
		interval = time.Minute
	}

	factory := promauto.With(reg)

	return &HousekeepingService{
		Tokens:   tokens,
		Logger:   logger,
		Window:   window,
		Interval: interval,
		runs: factory.NewCounter(prometheus.CounterOpts{
			Name: "bartab_oidc_housekeeping_runs_total",
			Help: "Number of token store sweeps performed.",
		}),
		swept: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bartab_oidc_housekeeping_swept_total",
			Help: "Number of expired entries removed from the token store.",
		}, []string{"kind"}),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "window", s.Window)
}

// Stop shuts down the worker and waits for an in-progress sweep to finish.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	codes, tokens := s.Tokens.RemoveExpiredTokens(int64(s.Window / time.Second))

	s.runs.Inc()
	s.swept.WithLabelValues("auth_code").Add(float64(codes))
	s.swept.WithLabelValues("access_token").Add(float64(tokens))

	s.Logger.Debug("housekeeping sweep completed", "codes_removed", codes, "tokens_removed", tokens)
}
