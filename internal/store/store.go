// Package store owns the persisted financial record set.
//
// The whole state is one JSON blob under BlobKey. Loading runs the migration
// pipeline before anything else sees the records. Every mutation encodes the
// next state and writes it through the Persister while the store lock is
// held; the in-memory state is only replaced after the write succeeds.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetup/internal/core"
	"budgetup/internal/log"
	"budgetup/internal/migration"
	"budgetup/internal/storage"
)

// BlobKey is the persistence key of the record set.
const BlobKey = "budgetup-financial-store"

var (
	ErrNotFound = core.ErrNotFound
	ErrCorrupt  = errors.New("corrupt store blob")
)

// Persister stores opaque blobs by key. Load returns storage.ErrNotFound
// when nothing is stored.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	mu        sync.RWMutex
	state     core.FinancialState
	persister Persister
	key       string
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Open loads, migrates and, if migration changed anything, re-saves the
// blob. A blob that cannot be decoded is replaced by the empty state; only
// I/O failures are returned.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: p,
		key:       BlobKey,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.OrDefault(s.logger).WithComponent(log.ComponentStore)

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	blob, err := s.persister.Load(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.state = core.EmptyState()
		s.state.MigrationVersion = migration.Current
		s.logger.InfoContext(ctx, "No stored data, starting empty", log.FieldKey, s.key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", s.key, err)
	}

	state, err := decode(blob)
	if err != nil {
		s.logger.ErrorContext(ctx, "Stored data is corrupt, resetting to empty state",
			log.FieldKey, s.key,
			log.FieldError, err,
			"bytes", len(blob))
		empty := core.EmptyState()
		empty.MigrationVersion = migration.Current
		if err := s.write(ctx, empty); err != nil {
			return fmt.Errorf("reset corrupt blob: %w", err)
		}
		s.state = empty
		return nil
	}

	migrated, rep := migration.Migrate(state, "")
	if state.MigrationVersion > migration.Current {
		s.logger.WarnContext(ctx, "Stored data is newer than this build",
			log.FieldVersion, state.MigrationVersion,
			"supported", migration.Current)
	}
	if rep.Changed() {
		if err := s.write(ctx, migrated); err != nil {
			return fmt.Errorf("save migrated state: %w", err)
		}
		s.logger.InfoContext(ctx, "Stored data migrated",
			log.FieldOperation, log.OpMigrate,
			"from", rep.From,
			"to", rep.To,
			"currency_filled", rep.CurrencyFilled,
			"original_filled", rep.OriginalFilled)
	}
	s.state = migrated
	return nil
}

// Read returns the migrated state stored under key without writing
// anything back. Readers that share the blob with a running Store use it so
// the Store stays the only writer. A missing blob reads as the empty state;
// a corrupt one is returned as ErrCorrupt.
func Read(ctx context.Context, p Persister, key string) (core.FinancialState, error) {
	blob, err := p.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		empty := core.EmptyState()
		empty.MigrationVersion = migration.Current
		return empty, nil
	}
	if err != nil {
		return core.FinancialState{}, fmt.Errorf("load %s: %w", key, err)
	}
	state, err := decode(blob)
	if err != nil {
		return core.FinancialState{}, err
	}
	migrated, _ := migration.Migrate(state, "")
	return migrated, nil
}

// decode parses a blob. Anything that is not a JSON object with the expected
// field types is reported as ErrCorrupt.
func decode(blob []byte) (core.FinancialState, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		return core.FinancialState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if raw == nil {
		return core.FinancialState{}, fmt.Errorf("%w: blob is null", ErrCorrupt)
	}

	var state core.FinancialState
	if err := json.Unmarshal(blob, &state); err != nil {
		return core.FinancialState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if state.MigrationVersion < 0 {
		return core.FinancialState{}, fmt.Errorf("%w: negative migration version %d", ErrCorrupt, state.MigrationVersion)
	}
	state.Normalize()
	return state, nil
}

func encode(state core.FinancialState) ([]byte, error) {
	state.Normalize()
	b, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

// write persists state. Callers hold s.mu or are still constructing s.
func (s *Store) write(ctx context.Context, state core.FinancialState) error {
	blob, err := encode(state)
	if err != nil {
		return err
	}
	if err := s.persister.Save(ctx, s.key, blob); err != nil {
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	return nil
}

// mutate applies fn to a copy of the state, persists the copy and then makes
// it current. If fn or the write fails the state is unchanged.
func (s *Store) mutate(ctx context.Context, op string, fn func(*core.FinancialState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.write(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist state",
			log.FieldOperation, op,
			log.FieldError, err)
		return err
	}
	s.state = next
	s.logger.DebugContext(ctx, "State persisted", log.FieldOperation, op)
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() core.FinancialState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Key returns the persistence key.
func (s *Store) Key() string { return s.key }

// UserPreferences returns a copy of the preferences, or nil when unset.
func (s *Store) UserPreferences() *core.UserPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.UserPreferences == nil {
		return nil
	}
	p := *s.state.UserPreferences
	return &p
}

// DefaultCurrency returns the preferred currency or core.DefaultCurrency.
func (s *Store) DefaultCurrency() core.Code {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.PreferredCurrency()
}

// SetUserPreferences validates and stores prefs.
func (s *Store) SetUserPreferences(ctx context.Context, prefs core.UserPreferences) error {
	if err := core.Validate(prefs); err != nil {
		return err
	}
	return s.mutate(ctx, "set_preferences", func(st *core.FinancialState) error {
		st.UserPreferences = &prefs
		return nil
	})
}

// SetPreferredCurrency changes only the preference currency, creating
// default preferences when none exist. It returns the previous currency.
func (s *Store) SetPreferredCurrency(ctx context.Context, code core.Code) (core.Code, error) {
	if !code.IsSupported() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidCurrency, code)
	}
	var old core.Code
	err := s.mutate(ctx, "set_currency", func(st *core.FinancialState) error {
		old = st.PreferredCurrency()
		if st.UserPreferences == nil {
			st.UserPreferences = &core.UserPreferences{}
		}
		st.UserPreferences.Currency = code
		return nil
	})
	if err != nil {
		return "", err
	}
	return old, nil
}
