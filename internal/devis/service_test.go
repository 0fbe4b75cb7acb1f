package devis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/eventide-agency/eventide/internal/audit"
	"github.com/eventide-agency/eventide/internal/clients"
	"github.com/eventide-agency/eventide/internal/shared"
)

type memoryDevisRepo struct {
	devis       map[int64]*Devis
	lines       map[int64][]Prestation
	events      map[int64]int64 // event id -> owning client id
	eventStatus map[int64]string
	seqs        map[int]int64
	nextID      int64
	nextLineID  int64
	docPaths    map[int64]string
	failOnce    map[string]error
}

func newMemoryDevisRepo() *memoryDevisRepo {
	return &memoryDevisRepo{
		devis:       make(map[int64]*Devis),
		lines:       make(map[int64][]Prestation),
		events:      make(map[int64]int64),
		eventStatus: make(map[int64]string),
		seqs:        make(map[int]int64),
		docPaths:    make(map[int64]string),
		failOnce:    make(map[string]error),
	}
}

func (r *memoryDevisRepo) fail(op string) error {
	if err, ok := r.failOnce[op]; ok {
		delete(r.failOnce, op)
		return err
	}
	return nil
}

func (r *memoryDevisRepo) snapshot() *memoryDevisRepo {
	cp := newMemoryDevisRepo()
	for id, d := range r.devis {
		c := *d
		cp.devis[id] = &c
	}
	for id, ls := range r.lines {
		cp.lines[id] = append([]Prestation(nil), ls...)
	}
	for id, owner := range r.events {
		cp.events[id] = owner
	}
	for id, st := range r.eventStatus {
		cp.eventStatus[id] = st
	}
	for y, s := range r.seqs {
		cp.seqs[y] = s
	}
	cp.nextID = r.nextID
	cp.nextLineID = r.nextLineID
	return cp
}

func (r *memoryDevisRepo) restore(snap *memoryDevisRepo) {
	r.devis = snap.devis
	r.lines = snap.lines
	r.events = snap.events
	r.eventStatus = snap.eventStatus
	r.seqs = snap.seqs
	r.nextID = snap.nextID
	r.nextLineID = snap.nextLineID
}

// WithTx mimics the database transaction: every mutation in fn is rolled
// back when fn returns an error.
func (r *memoryDevisRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snap := r.snapshot()
	if err := fn(ctx, &memoryDevisTx{repo: r}); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

func (r *memoryDevisRepo) Get(ctx context.Context, id int64) (*Devis, error) {
	d, ok := r.devis[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *d
	out.Lines = append([]Prestation(nil), r.lines[id]...)
	out.EventClientID = r.events[d.EventID]
	return &out, nil
}

func (r *memoryDevisRepo) List(ctx context.Context, req ListDevisRequest) ([]Devis, int, error) {
	var out []Devis
	for id := range r.devis {
		d, _ := r.Get(ctx, id)
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (r *memoryDevisRepo) ListByClient(ctx context.Context, clientID int64) ([]Devis, error) {
	var out []Devis
	for id, d := range r.devis {
		if r.events[d.EventID] == clientID {
			full, _ := r.Get(ctx, id)
			out = append(out, *full)
		}
	}
	return out, nil
}

func (r *memoryDevisRepo) SetDocumentPath(ctx context.Context, id int64, path string) error {
	if _, ok := r.devis[id]; !ok {
		return shared.ErrNotFound
	}
	r.docPaths[id] = path
	return nil
}

type memoryDevisTx struct {
	repo *memoryDevisRepo
}

func (t *memoryDevisTx) EventExists(ctx context.Context, eventID int64) (bool, error) {
	_, ok := t.repo.events[eventID]
	return ok, nil
}

func (t *memoryDevisTx) ActiveForEvent(ctx context.Context, eventID int64) (*Devis, error) {
	var found *Devis
	for _, d := range t.repo.devis {
		if d.EventID == eventID && d.Status.Active() {
			if found == nil || d.ID > found.ID {
				found = d
			}
		}
	}
	if found == nil {
		return nil, shared.ErrNotFound
	}
	out := *found
	return &out, nil
}

func (t *memoryDevisTx) NextNumber(ctx context.Context, year int) (int64, error) {
	if err := t.repo.fail("next_number"); err != nil {
		return 0, err
	}
	t.repo.seqs[year]++
	return t.repo.seqs[year], nil
}

func (t *memoryDevisTx) Insert(ctx context.Context, d Devis) (int64, error) {
	if err := t.repo.fail("insert"); err != nil {
		return 0, err
	}
	t.repo.nextID++
	d.ID = t.repo.nextID
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	t.repo.devis[d.ID] = &d
	return d.ID, nil
}

func (t *memoryDevisTx) InsertLine(ctx context.Context, line Prestation) (int64, error) {
	if err := t.repo.fail("insert_line"); err != nil {
		return 0, err
	}
	t.repo.nextLineID++
	line.ID = t.repo.nextLineID
	t.repo.lines[line.DevisID] = append(t.repo.lines[line.DevisID], line)
	return line.ID, nil
}

func (t *memoryDevisTx) DeleteLines(ctx context.Context, devisID int64) error {
	delete(t.repo.lines, devisID)
	return nil
}

func (t *memoryDevisTx) UpdateTaxRate(ctx context.Context, id int64, rate float64) error {
	d, ok := t.repo.devis[id]
	if !ok {
		return shared.ErrNotFound
	}
	d.TaxRate = rate
	return nil
}

func (t *memoryDevisTx) UpdateStatus(ctx context.Context, id int64, upd StatusUpdate) error {
	if err := t.repo.fail("update_status"); err != nil {
		return err
	}
	d, ok := t.repo.devis[id]
	if !ok {
		return shared.ErrNotFound
	}
	d.Status = upd.Status
	if upd.SentAt != nil {
		d.SentAt = upd.SentAt
	}
	if upd.RespondedAt != nil {
		d.RespondedAt = upd.RespondedAt
	}
	if upd.ModificationReason != nil {
		d.ModificationReason = upd.ModificationReason
	} else if upd.ClearReason {
		d.ModificationReason = nil
	}
	return nil
}

func (t *memoryDevisTx) ConfirmEvent(ctx context.Context, eventID int64) error {
	if err := t.repo.fail("confirm_event"); err != nil {
		return err
	}
	if _, ok := t.repo.events[eventID]; !ok {
		return shared.ErrNotFound
	}
	t.repo.eventStatus[eventID] = "CONFIRMED"
	return nil
}

func (t *memoryDevisTx) Delete(ctx context.Context, id int64) error {
	if _, ok := t.repo.devis[id]; !ok {
		return shared.ErrNotFound
	}
	delete(t.repo.devis, id)
	delete(t.repo.lines, id)
	return nil
}

type stubDirectory struct {
	byUser map[int64]*clients.Client
}

func (d *stubDirectory) FindByUserID(ctx context.Context, userID int64) (*clients.Client, error) {
	c, ok := d.byUser[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

type recordingNotifier struct {
	sent      []string
	responses []string
}

func (n *recordingNotifier) DevisSent(ctx context.Context, d WithTotals, document []byte) error {
	n.sent = append(n.sent, d.Number)
	return nil
}

func (n *recordingNotifier) DevisResponse(ctx context.Context, d WithTotals, action string, reason *string) error {
	n.responses = append(n.responses, d.Number+":"+action)
	return nil
}

type stubRenderer struct {
	err error
}

func (r *stubRenderer) RenderDevis(ctx context.Context, d WithTotals) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF " + d.Number), nil
}

type recordingAuditor struct {
	entries []audit.Entry
}

func (a *recordingAuditor) Record(ctx context.Context, e audit.Entry) {
	a.entries = append(a.entries, e)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type devisFixture struct {
	repo     *memoryDevisRepo
	service  *Service
	notifier *recordingNotifier
	auditor  *recordingAuditor
}

func newDevisFixture() *devisFixture {
	repo := newMemoryDevisRepo()
	repo.events[10] = 100 // event 10 belongs to client 100
	repo.events[11] = 101
	dir := &stubDirectory{byUser: map[int64]*clients.Client{
		1000: {ID: 100, UserID: 1000, Email: "claire@example.com"},
		1001: {ID: 101, UserID: 1001, Email: "bruno@example.com"},
	}}
	notifier := &recordingNotifier{}
	auditor := &recordingAuditor{}
	service := NewService(repo, dir, notifier, &stubRenderer{}, auditor, testLogger())
	return &devisFixture{repo: repo, service: service, notifier: notifier, auditor: auditor}
}

func (f *devisFixture) create(t *testing.T, eventID int64, items ...LineItemRequest) *WithTotals {
	t.Helper()
	out, err := f.service.Create(context.Background(), CreateDevisRequest{
		EventID:   eventID,
		LineItems: items,
	})
	require.NoError(t, err)
	return out
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	f := newDevisFixture()
	year := time.Now().Year()

	first := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	require.Equal(t, FormatNumber(year, 1), first.Number)
	require.Equal(t, StatusDraft, first.Status)
	require.Equal(t, DefaultTaxRate, first.TaxRate)
	require.Len(t, first.Lines, 1)

	second := f.create(t, 11, LineItemRequest{Label: "Traiteur", Amount: 900})
	require.Equal(t, FormatNumber(year, 2), second.Number)
}

func TestCreateUnknownEvent(t *testing.T) {
	f := newDevisFixture()
	_, err := f.service.Create(context.Background(), CreateDevisRequest{EventID: 99})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateRejectsSecondActiveQuote(t *testing.T) {
	f := newDevisFixture()
	first := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})

	_, err := f.service.Create(context.Background(), CreateDevisRequest{EventID: 10})
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Contains(t, err.Error(), first.Number)
}

func TestCreateAllowedAfterRefusal(t *testing.T) {
	f := newDevisFixture()
	first := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})

	_, err := f.service.Send(context.Background(), first.ID)
	require.NoError(t, err)
	_, err = f.service.Refuse(context.Background(), first.ID, 1000)
	require.NoError(t, err)

	second, err := f.service.Create(context.Background(), CreateDevisRequest{
		EventID:   10,
		LineItems: []LineItemRequest{{Label: "Salle, v2", Amount: 450}},
	})
	require.NoError(t, err)
	require.NotEqual(t, first.Number, second.Number)
}

func TestCreateRetriesOnNumberCollision(t *testing.T) {
	f := newDevisFixture()
	f.repo.failOnce["insert"] = &pgconn.PgError{Code: "23505"}

	// The first attempt hits the unique index; the retry succeeds.
	out := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	require.Equal(t, StatusDraft, out.Status)
	require.Empty(t, f.repo.failOnce)
}

func TestCreateRollsBackOnLineFailure(t *testing.T) {
	f := newDevisFixture()
	f.repo.failOnce["insert_line"] = context.DeadlineExceeded

	_, err := f.service.Create(context.Background(), CreateDevisRequest{
		EventID:   10,
		LineItems: []LineItemRequest{{Label: "Salle", Amount: 500}},
	})
	require.Error(t, err)
	require.Empty(t, f.repo.devis)
	require.Empty(t, f.repo.lines)
}

func TestCreateValidatesLineItems(t *testing.T) {
	f := newDevisFixture()

	_, err := f.service.Create(context.Background(), CreateDevisRequest{
		EventID:   10,
		LineItems: []LineItemRequest{{Label: "   ", Amount: 10}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.service.Create(context.Background(), CreateDevisRequest{
		EventID:   10,
		LineItems: []LineItemRequest{{Label: "Salle", Amount: -1}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateReplacesAllLines(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10,
		LineItemRequest{Label: "Salle", Amount: 500},
		LineItemRequest{Label: "Traiteur", Amount: 900},
	)

	newItems := []LineItemRequest{{Label: "Salle premium", Amount: 800}}
	out, err := f.service.Update(context.Background(), d.ID, UpdateDevisRequest{LineItems: &newItems})
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	require.Equal(t, "Salle premium", out.Lines[0].Label)
	require.Equal(t, 800.0, out.Computed.PreTaxTotal)
}

func TestUpdateKeepsLinesWhenOmitted(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})

	rate := 10.0
	out, err := f.service.Update(context.Background(), d.ID, UpdateDevisRequest{TaxRate: &rate})
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	require.Equal(t, 10.0, out.TaxRate)
	require.Equal(t, 50.0, out.Computed.TaxAmount)
}

func TestUpdateRollsBackReplacementOnFailure(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10,
		LineItemRequest{Label: "Salle", Amount: 500},
		LineItemRequest{Label: "Traiteur", Amount: 900},
	)

	f.repo.failOnce["insert_line"] = context.DeadlineExceeded
	newItems := []LineItemRequest{{Label: "Salle premium", Amount: 800}}
	_, err := f.service.Update(context.Background(), d.ID, UpdateDevisRequest{LineItems: &newItems})
	require.Error(t, err)

	// The old line set survives the failed replacement.
	after, err := f.service.Get(context.Background(), d.ID)
	require.NoError(t, err)
	require.Len(t, after.Lines, 2)
	require.Equal(t, "Salle", after.Lines[0].Label)
}

func TestUpdateRejectedOnAcceptedQuote(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	_, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)
	_, err = f.service.Accept(context.Background(), d.ID, 1000)
	require.NoError(t, err)

	rate := 10.0
	_, err = f.service.Update(context.Background(), d.ID, UpdateDevisRequest{TaxRate: &rate})
	require.ErrorIs(t, err, shared.ErrImmutable)
}

func TestDeleteRejectedOnAcceptedQuote(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	_, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)
	_, err = f.service.Accept(context.Background(), d.ID, 1000)
	require.NoError(t, err)

	err = f.service.Delete(context.Background(), d.ID)
	require.ErrorIs(t, err, shared.ErrImmutable)
}

func TestDeleteRemovesQuoteAndLines(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})

	require.NoError(t, f.service.Delete(context.Background(), d.ID))
	_, err := f.service.Get(context.Background(), d.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, f.repo.lines[d.ID])
}

func TestSendTransitionsAndNotifies(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})

	out, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)
	require.Equal(t, StatusUnderClientReview, out.Status)
	require.NotNil(t, out.SentAt)
	require.Equal(t, []string{d.Number}, f.notifier.sent)
	require.NotEmpty(t, f.repo.docPaths[d.ID])
}

func TestSendOnlyFromDraft(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	_, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)

	_, err = f.service.Send(context.Background(), d.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestAcceptConfirmsEvent(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	_, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)

	out, err := f.service.Accept(context.Background(), d.ID, 1000)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, out.Status)
	require.NotNil(t, out.RespondedAt)
	require.Equal(t, "CONFIRMED", f.repo.eventStatus[10])
	require.Equal(t, []string{d.Number + ":accepted"}, f.notifier.responses)
}

func TestAcceptRollsBackWithEventConfirmation(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	_, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)

	f.repo.failOnce["confirm_event"] = context.DeadlineExceeded
	_, err = f.service.Accept(context.Background(), d.ID, 1000)
	require.Error(t, err)

	// The status update rolled back with the failed event confirmation.
	after, err := f.service.Get(context.Background(), d.ID)
	require.NoError(t, err)
	require.Equal(t, StatusUnderClientReview, after.Status)
}

func TestAcceptRequiresOwningClient(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	_, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)

	// User 1001 owns client 101, not the quote's client 100.
	_, err = f.service.Accept(context.Background(), d.ID, 1001)
	require.ErrorIs(t, err, shared.ErrForbidden)

	// Unknown users are rejected the same way.
	_, err = f.service.Accept(context.Background(), d.ID, 9999)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestOwnershipCheckedBeforeStatus(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})

	// Draft quote, wrong owner: the caller learns nothing about the status.
	_, err := f.service.Accept(context.Background(), d.ID, 1001)
	require.ErrorIs(t, err, shared.ErrForbidden)
	require.NotErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestRefuseLeavesEventUntouched(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	_, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)

	out, err := f.service.Refuse(context.Background(), d.ID, 1000)
	require.NoError(t, err)
	require.Equal(t, StatusRefused, out.Status)
	require.Empty(t, f.repo.eventStatus[10])
}

func TestModificationCycle(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	_, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)

	out, err := f.service.RequestModification(context.Background(), d.ID, 1000, "  need a bigger room  ")
	require.NoError(t, err)
	require.Equal(t, StatusModificationRequested, out.Status)
	require.NotNil(t, out.ModificationReason)
	require.Equal(t, "need a bigger room", *out.ModificationReason)

	// Staff edits the quote: it returns to draft and the reason clears.
	newItems := []LineItemRequest{{Label: "Grande salle", Amount: 700}}
	reworked, err := f.service.Update(context.Background(), out.ID, UpdateDevisRequest{LineItems: &newItems})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, reworked.Status)
	require.Nil(t, reworked.ModificationReason)

	// The quote can go out again.
	_, err = f.service.Send(context.Background(), out.ID)
	require.NoError(t, err)
}

func TestRequestModificationNeedsReason(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	_, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)

	_, err = f.service.RequestModification(context.Background(), d.ID, 1000, "   ")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestListMine(t *testing.T) {
	f := newDevisFixture()
	mine := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	f.create(t, 11, LineItemRequest{Label: "Autre", Amount: 100})

	list, err := f.service.ListMine(context.Background(), 1000)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, mine.Number, list[0].Number)

	_, err = f.service.ListMine(context.Background(), 9999)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestRenderPDFSurfacesErrors(t *testing.T) {
	repo := newMemoryDevisRepo()
	repo.events[10] = 100
	dir := &stubDirectory{byUser: map[int64]*clients.Client{}}
	service := NewService(repo, dir, nil, &stubRenderer{err: context.DeadlineExceeded}, nil, testLogger())

	require.NoError(t, repo.WithTx(context.Background(), func(ctx context.Context, tx TxRepository) error {
		id, err := tx.Insert(ctx, Devis{Number: "DEV-2025-0001", EventID: 10, TaxRate: 20, Status: StatusDraft})
		if err != nil {
			return err
		}
		_, err = tx.InsertLine(ctx, Prestation{DevisID: id, Label: "Salle", Amount: 100})
		return err
	}))

	_, _, err := service.RenderPDF(context.Background(), 1)
	require.Error(t, err)
}

func TestRenderPDFReturnsQuoteWithDocument(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})

	out, document, err := f.service.RenderPDF(context.Background(), d.ID)
	require.NoError(t, err)
	require.NotEmpty(t, document)
	require.Equal(t, d.Number, out.Number)
	require.Equal(t, 500.0, out.Computed.PreTaxTotal)
}

func TestMutationsAreAudited(t *testing.T) {
	f := newDevisFixture()
	d := f.create(t, 10, LineItemRequest{Label: "Salle", Amount: 500})
	_, err := f.service.Send(context.Background(), d.ID)
	require.NoError(t, err)

	var actions []string
	for _, e := range f.auditor.entries {
		actions = append(actions, e.Action)
	}
	require.Equal(t, []string{"devis.create", "devis.send"}, actions)
}
