package performance

import (
	"context"
	"errors"
	"sync"

	"github.com/abhisek/aprova/internal/store"
	"go.uber.org/zap"
)

// Tracker owns the in-memory Record and writes it back to the key-value
// store after every mutation. Write failures are logged; the in-memory
// record stays authoritative for the process lifetime.
type Tracker struct {
	mu     sync.Mutex
	kv     store.KV
	rec    Record
	logger *zap.Logger
}

// Load reads the stored record, defaulting to an empty one when the key is
// missing, unreadable or malformed.
func Load(ctx context.Context, kv store.KV, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{kv: kv, rec: New(), logger: logger}

	data, err := kv.Get(ctx, Key)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		logger.Warn("read performance record", zap.Error(err))
	default:
		t.rec = Decode(data)
	}
	return t
}

// Record counts one answer and persists the updated record.
func (t *Tracker) Record(ctx context.Context, correct bool, subject string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rec.Apply(correct, subject)
	t.persist(ctx)
}

// Snapshot returns a copy of the current record.
func (t *Tracker) Snapshot() Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rec.Clone()
}

// Reset clears the record and removes the stored entry.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rec = New()
	return t.kv.Delete(ctx, Key)
}

func (t *Tracker) persist(ctx context.Context) {
	data, err := Encode(t.rec)
	if err != nil {
		t.logger.Error("encode performance record", zap.Error(err))
		return
	}
	if err := t.kv.Put(ctx, Key, data); err != nil {
		t.logger.Warn("write performance record", zap.Error(err))
	}
}
