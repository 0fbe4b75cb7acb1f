package prospects

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventide-agency/eventide/internal/shared"
)

type memoryProspectRepo struct {
	prospects map[int64]*Prospect
	notes     map[int64][]Note
	users     map[int64]string // user id -> password hash
	clients   map[int64]int64  // client id -> user id
	nextID    int64
	failOnce  map[string]error
}

func newMemoryProspectRepo() *memoryProspectRepo {
	return &memoryProspectRepo{
		prospects: make(map[int64]*Prospect),
		notes:     make(map[int64][]Note),
		users:     make(map[int64]string),
		clients:   make(map[int64]int64),
		failOnce:  make(map[string]error),
	}
}

func (r *memoryProspectRepo) fail(op string) error {
	if err, ok := r.failOnce[op]; ok {
		delete(r.failOnce, op)
		return err
	}
	return nil
}

func (r *memoryProspectRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapProspects := make(map[int64]*Prospect, len(r.prospects))
	for id, p := range r.prospects {
		c := *p
		snapProspects[id] = &c
	}
	snapUsers := make(map[int64]string, len(r.users))
	for id, h := range r.users {
		snapUsers[id] = h
	}
	snapClients := make(map[int64]int64, len(r.clients))
	for id, u := range r.clients {
		snapClients[id] = u
	}
	nextID := r.nextID

	if err := fn(ctx, &memoryProspectTx{repo: r}); err != nil {
		r.prospects = snapProspects
		r.users = snapUsers
		r.clients = snapClients
		r.nextID = nextID
		return err
	}
	return nil
}

func (r *memoryProspectRepo) Get(ctx context.Context, id int64) (*Prospect, error) {
	p, ok := r.prospects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *memoryProspectRepo) List(ctx context.Context, req ListProspectsRequest) ([]Prospect, int, error) {
	var out []Prospect
	for _, p := range r.prospects {
		if req.Status != nil && p.Status != *req.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memoryProspectRepo) Create(ctx context.Context, p Prospect) (int64, error) {
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.prospects[p.ID] = &p
	return p.ID, nil
}

func (r *memoryProspectRepo) Update(ctx context.Context, id int64, req UpdateProspectRequest) error {
	p, ok := r.prospects[id]
	if !ok {
		return shared.ErrNotFound
	}
	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	return nil
}

func (r *memoryProspectRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.prospects[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.prospects, id)
	return nil
}

func (r *memoryProspectRepo) AddNote(ctx context.Context, n Note) (int64, error) {
	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = time.Now()
	r.notes[n.ProspectID] = append(r.notes[n.ProspectID], n)
	return n.ID, nil
}

func (r *memoryProspectRepo) ListNotes(ctx context.Context, prospectID int64) ([]Note, error) {
	return append([]Note(nil), r.notes[prospectID]...), nil
}

type memoryProspectTx struct {
	repo *memoryProspectRepo
}

func (t *memoryProspectTx) GetForUpdate(ctx context.Context, id int64) (*Prospect, error) {
	return t.repo.Get(ctx, id)
}

func (t *memoryProspectTx) InsertUser(ctx context.Context, email, passwordHash, fullName string) (int64, error) {
	if err := t.repo.fail("insert_user"); err != nil {
		return 0, err
	}
	t.repo.nextID++
	t.repo.users[t.repo.nextID] = passwordHash
	return t.repo.nextID, nil
}

func (t *memoryProspectTx) InsertClient(ctx context.Context, userID int64, p Prospect, address *string) (int64, error) {
	if err := t.repo.fail("insert_client"); err != nil {
		return 0, err
	}
	t.repo.nextID++
	t.repo.clients[t.repo.nextID] = userID
	return t.repo.nextID, nil
}

func (t *memoryProspectTx) MarkConverted(ctx context.Context, id, clientID int64) error {
	p, ok := t.repo.prospects[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = StatusConverted
	p.ClientID = &clientID
	return nil
}

func newProspectFixture() (*Service, *memoryProspectRepo) {
	repo := newMemoryProspectRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

func TestCreateStartsInNewStatus(t *testing.T) {
	service, _ := newProspectFixture()
	p, err := service.Create(context.Background(), CreateProspectRequest{
		FirstName: "Nora", LastName: "Blanc", Email: "nora@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, StatusNew, p.Status)
}

func TestUpdateRejectsDirectConversion(t *testing.T) {
	service, _ := newProspectFixture()
	p, err := service.Create(context.Background(), CreateProspectRequest{
		FirstName: "Nora", LastName: "Blanc", Email: "nora@example.com",
	})
	require.NoError(t, err)

	converted := StatusConverted
	_, err = service.Update(context.Background(), p.ID, UpdateProspectRequest{Status: &converted})
	require.ErrorIs(t, err, shared.ErrValidation)

	bogus := Status("MAYBE")
	_, err = service.Update(context.Background(), p.ID, UpdateProspectRequest{Status: &bogus})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestConvertCreatesUserAndClient(t *testing.T) {
	service, repo := newProspectFixture()
	p, err := service.Create(context.Background(), CreateProspectRequest{
		FirstName: "Nora", LastName: "Blanc", Email: "nora@example.com",
	})
	require.NoError(t, err)

	result, err := service.Convert(context.Background(), p.ID, ConvertRequest{Password: "initial-pass"})
	require.NoError(t, err)
	require.Equal(t, StatusConverted, result.Prospect.Status)
	require.NotNil(t, result.Prospect.ClientID)
	require.Equal(t, *result.Prospect.ClientID, result.ClientID)
	require.Equal(t, repo.clients[result.ClientID], result.UserID)

	storedHash := repo.users[result.UserID]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("initial-pass")))
}

func TestConvertTwiceConflicts(t *testing.T) {
	service, _ := newProspectFixture()
	p, err := service.Create(context.Background(), CreateProspectRequest{
		FirstName: "Nora", LastName: "Blanc", Email: "nora@example.com",
	})
	require.NoError(t, err)

	_, err = service.Convert(context.Background(), p.ID, ConvertRequest{Password: "initial-pass"})
	require.NoError(t, err)
	_, err = service.Convert(context.Background(), p.ID, ConvertRequest{Password: "initial-pass"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestConvertRollsBackOnClientFailure(t *testing.T) {
	service, repo := newProspectFixture()
	p, err := service.Create(context.Background(), CreateProspectRequest{
		FirstName: "Nora", LastName: "Blanc", Email: "nora@example.com",
	})
	require.NoError(t, err)

	repo.failOnce["insert_client"] = context.DeadlineExceeded
	_, err = service.Convert(context.Background(), p.ID, ConvertRequest{Password: "initial-pass"})
	require.Error(t, err)

	// The user created earlier in the transaction is gone and the prospect
	// is untouched.
	require.Empty(t, repo.users)
	after, err := service.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusNew, after.Status)
	require.Nil(t, after.ClientID)
}

func TestNotesRequireExistingProspect(t *testing.T) {
	service, _ := newProspectFixture()
	_, err := service.AddNote(context.Background(), 404, 1, AddNoteRequest{Body: "call back"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddAndListNotes(t *testing.T) {
	service, _ := newProspectFixture()
	p, err := service.Create(context.Background(), CreateProspectRequest{
		FirstName: "Nora", LastName: "Blanc", Email: "nora@example.com",
	})
	require.NoError(t, err)

	note, err := service.AddNote(context.Background(), p.ID, 7, AddNoteRequest{Body: "call back tuesday"})
	require.NoError(t, err)
	require.Equal(t, int64(7), note.AuthorID)

	notes, err := service.ListNotes(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "call back tuesday", notes[0].Body)
}
