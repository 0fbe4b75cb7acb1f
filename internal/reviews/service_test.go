package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventide-agency/eventide/internal/shared"
)

type memoryReviewStore struct {
	reviews map[int64]*Review
	owners  map[int64]int64 // event id -> client id
	nextID  int64
}

func newMemoryReviewStore() *memoryReviewStore {
	return &memoryReviewStore{
		reviews: make(map[int64]*Review),
		owners:  make(map[int64]int64),
	}
}

func (s *memoryReviewStore) Get(ctx context.Context, id int64) (*Review, error) {
	rv, ok := s.reviews[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *rv
	return &out, nil
}

func (s *memoryReviewStore) EventOwner(ctx context.Context, eventID int64) (int64, error) {
	owner, ok := s.owners[eventID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return owner, nil
}

func (s *memoryReviewStore) ExistsForEvent(ctx context.Context, clientID, eventID int64) (bool, error) {
	for _, rv := range s.reviews {
		if rv.ClientID == clientID && rv.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryReviewStore) List(ctx context.Context, req ListReviewsRequest) ([]Review, int, error) {
	var out []Review
	for _, rv := range s.reviews {
		if req.ClientID != nil && rv.ClientID != *req.ClientID {
			continue
		}
		if req.PublishedOnly && !rv.Published {
			continue
		}
		out = append(out, *rv)
	}
	return out, len(out), nil
}

func (s *memoryReviewStore) Create(ctx context.Context, rv Review) (int64, error) {
	s.nextID++
	rv.ID = s.nextID
	rv.CreatedAt = time.Now()
	rv.UpdatedAt = rv.CreatedAt
	s.reviews[rv.ID] = &rv
	return rv.ID, nil
}

func (s *memoryReviewStore) SetPublished(ctx context.Context, id int64, published bool) error {
	rv, ok := s.reviews[id]
	if !ok {
		return shared.ErrNotFound
	}
	rv.Published = published
	return nil
}

func (s *memoryReviewStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.reviews[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func TestCreateRequiresEventOwnership(t *testing.T) {
	store := newMemoryReviewStore()
	store.owners[10] = 100
	service := NewService(store)

	_, err := service.Create(context.Background(), 999, CreateReviewRequest{EventID: 10, Rating: 4})
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = service.Create(context.Background(), 100, CreateReviewRequest{EventID: 404, Rating: 4})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateStartsUnpublished(t *testing.T) {
	store := newMemoryReviewStore()
	store.owners[10] = 100
	service := NewService(store)

	rv, err := service.Create(context.Background(), 100, CreateReviewRequest{EventID: 10, Rating: 5})
	require.NoError(t, err)
	require.False(t, rv.Published)
	require.Equal(t, int64(100), rv.ClientID)
}

func TestCreateRejectsSecondReviewForEvent(t *testing.T) {
	store := newMemoryReviewStore()
	store.owners[10] = 100
	service := NewService(store)

	_, err := service.Create(context.Background(), 100, CreateReviewRequest{EventID: 10, Rating: 5})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), 100, CreateReviewRequest{EventID: 10, Rating: 2})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestModerateTogglesPublished(t *testing.T) {
	store := newMemoryReviewStore()
	store.owners[10] = 100
	service := NewService(store)

	rv, err := service.Create(context.Background(), 100, CreateReviewRequest{EventID: 10, Rating: 5})
	require.NoError(t, err)

	published, err := service.Moderate(context.Background(), rv.ID, ModerateReviewRequest{Published: true})
	require.NoError(t, err)
	require.True(t, published.Published)

	hidden, err := service.Moderate(context.Background(), rv.ID, ModerateReviewRequest{Published: false})
	require.NoError(t, err)
	require.False(t, hidden.Published)

	_, err = service.Moderate(context.Background(), 404, ModerateReviewRequest{Published: true})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPublishedOnlyListing(t *testing.T) {
	store := newMemoryReviewStore()
	store.owners[10] = 100
	store.owners[11] = 100
	service := NewService(store)

	first, err := service.Create(context.Background(), 100, CreateReviewRequest{EventID: 10, Rating: 5})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), 100, CreateReviewRequest{EventID: 11, Rating: 3})
	require.NoError(t, err)

	_, err = service.Moderate(context.Background(), first.ID, ModerateReviewRequest{Published: true})
	require.NoError(t, err)

	visible, total, err := service.List(context.Background(), ListReviewsRequest{PublishedOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, first.ID, visible[0].ID)
}
