package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	entries []Entry
	err     error
}

func (s *memoryStore) Insert(ctx context.Context, e Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *memoryStore) List(ctx context.Context, f ListFilters) ([]Entry, int, error) {
	var out []Entry
	for _, e := range s.entries {
		if f.Entity != "" && e.Entity != f.Entity {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordFillsIDAndTimestamp(t *testing.T) {
	store := &memoryStore{}
	service := NewService(store, testLogger())

	service.Record(context.Background(), Entry{
		ActorID: 1, Action: "devis.send", Entity: "devis", EntityID: 42,
	})

	require.Len(t, store.entries, 1)
	require.NotEqual(t, uuid.Nil, store.entries[0].ID)
	require.False(t, store.entries[0].At.IsZero())
}

func TestRecordNeverFails(t *testing.T) {
	store := &memoryStore{err: context.DeadlineExceeded}
	service := NewService(store, testLogger())

	// A failed write is logged, not raised.
	service.Record(context.Background(), Entry{Action: "devis.create", Entity: "devis", EntityID: 1})
	require.Empty(t, store.entries)
}

func TestListFiltersByEntity(t *testing.T) {
	store := &memoryStore{}
	service := NewService(store, testLogger())

	service.Record(context.Background(), Entry{Action: "devis.create", Entity: "devis", EntityID: 1})
	service.Record(context.Background(), Entry{Action: "event.create", Entity: "event", EntityID: 2})

	out, total, err := service.List(context.Background(), ListFilters{Entity: "devis"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "devis.create", out[0].Action)
}
