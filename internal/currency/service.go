// Package currency is the single entry point for converting and formatting
// amounts in the user's active display currency.
//
// Service composes the rate resolver, two TTL caches and the formatter. It
// never returns conversion or formatting errors: a missing rate converts at
// the identity rate and a formatting failure falls back to a plain symbol
// rendering. The only user-visible failure is the Error state set by
// SetActiveCurrency.
package currency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"budgetup/internal/cache"
	"budgetup/internal/core"
	"budgetup/internal/format"
	"budgetup/internal/log"
	"budgetup/internal/notify"
	"budgetup/internal/rates"
)

// Preferences is the source of truth for the active currency.
type Preferences interface {
	DefaultCurrency() core.Code
	SetPreferredCurrency(ctx context.Context, code core.Code) (old core.Code, err error)
}

type Service struct {
	resolver  *rates.Resolver
	rateCache *cache.TTLCache[float64]
	fmtCache  *cache.TTLCache[string]
	formatter *format.Formatter
	prefs     Preferences
	bus       *notify.Bus
	locale    string
	logger    *log.Logger

	mu      sync.RWMutex
	active  core.Code // used when prefs is nil
	loading bool
	lastErr string
}

type Option func(*Service)

func WithResolver(r *rates.Resolver) Option {
	return func(s *Service) { s.resolver = r }
}

func WithRateCache(c *cache.TTLCache[float64]) Option {
	return func(s *Service) { s.rateCache = c }
}

func WithFormatCache(c *cache.TTLCache[string]) Option {
	return func(s *Service) { s.fmtCache = c }
}

func WithFormatter(f *format.Formatter) Option {
	return func(s *Service) { s.formatter = f }
}

func WithBus(b *notify.Bus) Option {
	return func(s *Service) { s.bus = b }
}

// WithLocale sets the locale used by Format.
func WithLocale(locale string) Option {
	return func(s *Service) {
		if locale != "" {
			s.locale = locale
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds a Service. prefs may be nil, in which case the active
// currency lives only in the service and starts as core.DefaultCurrency.
// Dependencies not supplied through options get defaults.
func NewService(prefs Preferences, opts ...Option) *Service {
	s := &Service{
		prefs:  prefs,
		locale: format.DefaultLocale,
		active: core.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.OrDefault(s.logger).WithComponent(log.ComponentCurrency)
	if s.resolver == nil {
		s.resolver = rates.NewResolver(nil, rates.WithLogger(s.logger))
	}
	if s.rateCache == nil {
		s.rateCache = cache.NewTTLCache[float64]()
	}
	if s.fmtCache == nil {
		s.fmtCache = cache.NewTTLCache[string]()
	}
	if s.formatter == nil {
		s.formatter = format.New(format.WithLocale(s.locale), format.WithLogger(s.logger))
	}
	if s.bus == nil {
		s.bus = notify.NewBus(s.logger)
	}
	return s
}

// Bus returns the bus currency changes are published on.
func (s *Service) Bus() *notify.Bus { return s.bus }

// Locale returns the locale Format renders with.
func (s *Service) Locale() string { return s.locale }

// Caches returns the caches a cache.Manager should sweep.
func (s *Service) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.rateCache, s.fmtCache}
}

// ActiveCurrency returns the currency amounts are displayed in.
func (s *Service) ActiveCurrency() core.Code {
	if s.prefs != nil {
		return s.prefs.DefaultCurrency()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Symbol returns the display symbol of the active currency.
func (s *Service) Symbol() string {
	return format.Symbol(s.ActiveCurrency())
}

// Convert converts amount into the active currency. from defaults to the
// active currency, which makes the call an identity.
func (s *Service) Convert(amount float64, from ...core.Code) float64 {
	active := s.ActiveCurrency()
	return s.ConvertBetween(amount, source(from, active), active)
}

// Format converts amount into the active currency and renders it.
func (s *Service) Format(amount float64, from ...core.Code) string {
	active := s.ActiveCurrency()
	converted := s.ConvertBetween(amount, source(from, active), active)
	return s.FormatIn(converted, active, s.locale)
}

// ConvertBetween converts amount using a cached rate for from -> to.
func (s *Service) ConvertBetween(amount float64, from, to core.Code) float64 {
	return amount * s.Rate(from, to)
}

// Rate returns the from -> to rate, consulting the rate cache first. Rates
// that fell back to identity are not cached so the warning is repeated.
func (s *Service) Rate(from, to core.Code) float64 {
	rate, _ := s.rate(from, to)
	return rate
}

// rate reports false when no real rate exists for the pair.
func (s *Service) rate(from, to core.Code) (float64, bool) {
	if from == to {
		return 1, true
	}
	key := rateKey(from, to)
	if rate, ok := s.rateCache.Get(key); ok {
		return rate, true
	}
	res := s.resolver.Resolve(from, to)
	if res.Fallback() {
		return res.Rate, false
	}
	s.rateCache.Set(key, res.Rate)
	return res.Rate, true
}

// FormatIn renders amount in code for locale without conversion. An empty
// locale means the service locale.
func (s *Service) FormatIn(amount float64, code core.Code, locale string) string {
	if locale == "" {
		locale = s.locale
	}
	key := formatKey(amount, code, locale)
	if out, ok := s.fmtCache.Get(key); ok {
		return out
	}
	out := s.formatter.Format(amount, code, locale)
	if out == "" {
		out = format.Plain(amount, code)
	}
	s.fmtCache.Set(key, out)
	return out
}

// SetActiveCurrency validates code, stores it as the user preference and
// publishes a notify.CurrencyChanged event. Failures are recorded in Error
// and leave the active currency unchanged. It reports whether the change
// took effect.
func (s *Service) SetActiveCurrency(ctx context.Context, code string) bool {
	newCode, err := core.ParseCode(code)
	if err != nil {
		msg := "Currency code is required"
		if code != "" {
			msg = fmt.Sprintf("Invalid currency code: %s", code)
		}
		s.fail(ctx, msg, err)
		return false
	}

	s.setLoading(true)
	defer s.setLoading(false)

	old := s.ActiveCurrency()
	if s.prefs != nil {
		prev, err := s.prefs.SetPreferredCurrency(ctx, newCode)
		if err != nil {
			s.fail(ctx, "Failed to update currency preference", err)
			return false
		}
		old = prev
	} else {
		s.mu.Lock()
		s.active = newCode
		s.mu.Unlock()
	}

	s.ClearError()
	s.logger.InfoContext(ctx, "Active currency set",
		log.FieldOldCurr, string(old),
		log.FieldNewCurr, string(newCode))
	s.bus.Publish(notify.CurrencyChanged{OldCurrency: old, NewCurrency: newCode})
	return true
}

func (s *Service) fail(ctx context.Context, msg string, err error) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()

	level := s.logger.WarnContext
	if !errors.Is(err, core.ErrInvalidCurrency) {
		level = s.logger.ErrorContext
	}
	level(ctx, "Currency change rejected", "reason", msg, log.FieldError, err)
}

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// IsLoading reports whether a currency change is in progress.
func (s *Service) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the last currency change failure, or "" when there is none.
func (s *Service) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Service) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

func source(from []core.Code, active core.Code) core.Code {
	if len(from) > 0 && from[0] != "" {
		return from[0]
	}
	return active
}

func rateKey(from, to core.Code) string {
	return string(from) + "-" + string(to)
}

func formatKey(amount float64, code core.Code, locale string) string {
	return strconv.FormatFloat(amount, 'f', -1, 64) + "-" + string(code) + "-" + locale
}
