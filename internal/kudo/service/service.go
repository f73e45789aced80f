// Package service implements kudo issuance and the read-side queries around it.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"kudos/internal/kudo/metrics"
	"kudos/internal/kudo/models"
	"kudos/internal/kudo/quota"
)

const tracerName = "kudos/internal/kudo/service"

// DefaultPublishTimeout bounds event publishing after a kudo is committed.
const DefaultPublishTimeout = 2 * time.Second

type Service struct {
	directory Directory
	ledger    Ledger
	quota     *quota.Calculator
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer

	clock            quota.Clock
	weeklyLimit      int
	location         *time.Location
	maxMessageLength int
	publishTimeout   time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces time.Now for issuance timestamps and quota windows.
func WithClock(clock quota.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithWeeklyLimit(limit int) Option {
	return func(s *Service) {
		s.weeklyLimit = limit
	}
}

// WithLocation sets the timezone in which weeks start.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.location = loc
	}
}

func WithMaxMessageLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxMessageLength = n
		}
	}
}

func WithPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithPublishTimeout bounds each publish. Non-positive values are ignored.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(directory Directory, ledger Ledger, opts ...Option) (*Service, error) {
	if directory == nil {
		return nil, errors.New("directory is required")
	}
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}

	svc := &Service{
		directory:        directory,
		ledger:           ledger,
		logger:           slog.Default(),
		clock:            time.Now,
		weeklyLimit:      quota.DefaultWeeklyLimit,
		location:         time.UTC,
		maxMessageLength: models.DefaultMaxMessageLength,
		publishTimeout:   DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.weeklyLimit < 1 {
		return nil, fmt.Errorf("weekly limit must be positive, got %d", svc.weeklyLimit)
	}
	if svc.tracer == nil {
		svc.tracer = otel.Tracer(tracerName)
	}

	svc.quota = quota.New(ledger,
		quota.WithLimit(svc.weeklyLimit),
		quota.WithLocation(svc.location),
		quota.WithClock(svc.clock),
	)
	return svc, nil
}

// Quota exposes the calculator backing this service.
func (s *Service) Quota() *quota.Calculator {
	return s.quota
}
