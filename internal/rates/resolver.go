package rates

import (
	"fmt"

	"budgetup/internal/core"
	"budgetup/internal/log"
)

// Path records how a rate was obtained.
type Path int

const (
	PathIdentity Path = iota
	PathDirect
	PathPivot
	PathFallback
)

func (p Path) String() string {
	switch p {
	case PathIdentity:
		return "identity"
	case PathDirect:
		return "direct"
	case PathPivot:
		return "pivot"
	case PathFallback:
		return "fallback"
	default:
		return fmt.Sprintf("path(%d)", int(p))
	}
}

// Warning describes a pair for which no rate could be derived. It satisfies
// error so it can be logged, but the resolver never returns it as one.
type Warning struct {
	From core.Code
	To   core.Code
}

func (w *Warning) Error() string {
	return fmt.Sprintf("exchange rate not found for %s to %s, using original amount", w.From, w.To)
}

// Result is the outcome of resolving a pair. Rate is always usable: on
// fallback it is 1 and Warning is set.
type Result struct {
	Rate    float64
	Path    Path
	Warning *Warning
}

// Fallback reports whether the identity fallback was used.
func (r Result) Fallback() bool { return r.Path == PathFallback }

// Resolver derives rates from a Table with a single pivot hop.
type Resolver struct {
	table  Table
	pivot  core.Code
	logger *log.Logger
}

type Option func(*Resolver)

func WithPivot(pivot core.Code) Option {
	return func(r *Resolver) { r.pivot = pivot }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a resolver over table. A nil table means DefaultTable.
func NewResolver(table Table, opts ...Option) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	r := &Resolver{table: table, pivot: Pivot}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = log.OrDefault(r.logger).WithComponent(log.ComponentRates)
	return r
}

// Resolve returns the rate for from -> to. It never fails: when neither a
// direct entry nor a pivot route exists the identity rate is returned
// together with a Warning.
func (r *Resolver) Resolve(from, to core.Code) Result {
	if from == to {
		return Result{Rate: 1, Path: PathIdentity}
	}

	if rate, ok := r.table.Lookup(from, to); ok {
		return Result{Rate: rate, Path: PathDirect}
	}

	// One hop only: each leg is either identity or a direct entry.
	if toPivot, ok := r.leg(from, r.pivot); ok {
		if fromPivot, ok := r.leg(r.pivot, to); ok {
			return Result{Rate: toPivot * fromPivot, Path: PathPivot}
		}
	}

	w := &Warning{From: from, To: to}
	fields := log.NewFields().WithPair(string(from), string(to))
	fields["pivot"] = string(r.pivot)
	r.logger.Warn("Exchange rate not found, returning original amount", fields.ToSlice()...)
	return Result{Rate: 1, Path: PathFallback, Warning: w}
}

// Convert applies Resolve to amount.
func (r *Resolver) Convert(amount float64, from, to core.Code) (float64, Result) {
	res := r.Resolve(from, to)
	return amount * res.Rate, res
}

// Pivot returns the configured pivot currency.
func (r *Resolver) Pivot() core.Code { return r.pivot }

func (r *Resolver) leg(from, to core.Code) (float64, bool) {
	if from == to {
		return 1, true
	}
	return r.table.Lookup(from, to)
}
