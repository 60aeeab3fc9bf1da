package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/arcade-reservation-board/internal/board"
	"github.com/iliyamo/arcade-reservation-board/internal/model"
	"github.com/iliyamo/arcade-reservation-board/internal/queue"
	"github.com/iliyamo/arcade-reservation-board/internal/repository"
)

var kst = time.FixedZone("KST", 9*60*60)

// at returns 2026-10-17 hh:mm on the board clock.
func at(hh, mm int) time.Time {
	return time.Date(2026, 10, 17, hh, mm, 0, 0, kst)
}

type fakeReservations struct {
	mu        sync.Mutex
	rows      map[uint64]model.Reservation
	nextID    uint64
	listErr   error
	createErr error
}

func newFakeReservations(seed ...model.Reservation) *fakeReservations {
	f := &fakeReservations{rows: map[uint64]model.Reservation{}}
	for _, r := range seed {
		f.nextID++
		r.ID = f.nextID
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeReservations) ListAll(context.Context) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Reservation, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeReservations) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.rows {
		if r.Row == res.Row && r.Col == res.Col {
			return repository.ErrConflict
		}
	}
	f.nextID++
	res.ID = f.nextID
	res.CreatedAt = time.Now()
	f.rows[res.ID] = *res
	return nil
}

func (f *fakeReservations) DeleteByID(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeReservations) DeleteAll(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.rows))
	f.rows = map[uint64]model.Reservation{}
	return n, nil
}

func (f *fakeReservations) DeleteByIDs(_ context.Context, ids []uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := f.rows[id]; ok {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeReservations) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeLabels struct {
	mu  sync.Mutex
	set map[string]bool
}

func newFakeLabels() *fakeLabels { return &fakeLabels{set: map[string]bool{}} }

func (f *fakeLabels) ListAll(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for v := range f.set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeLabels) Insert(_ context.Context, v string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set[v] = true
	return nil
}

func (f *fakeLabels) Delete(_ context.Context, v string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.set, v)
	return nil
}

type fakeResets struct {
	mu        sync.Mutex
	dates     map[string]bool
	insertErr error
}

func newFakeResets() *fakeResets { return &fakeResets{dates: map[string]bool{}} }

func (f *fakeResets) Exists(_ context.Context, date string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dates[date], nil
}

func (f *fakeResets) Insert(_ context.Context, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.dates[date] {
		return repository.ErrConflict
	}
	f.dates[date] = true
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BoardEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BoardEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func (p *recordingPublisher) has(typ string) bool {
	for _, t := range p.types() {
		if t == typ {
			return true
		}
	}
	return false
}

type harness struct {
	svc          *BoardService
	reservations *fakeReservations
	programs     *fakeLabels
	times        *fakeLabels
	events       *recordingPublisher
	clock        time.Time
}

func newHarness(seed ...model.Reservation) *harness {
	h := &harness{
		reservations: newFakeReservations(seed...),
		programs:     newFakeLabels(),
		times:        newFakeLabels(),
		events:       &recordingPublisher{},
		clock:        at(10, 5),
	}
	catalog := board.DefaultCatalog()
	h.svc = NewBoardService(BoardDeps{
		Resolver:         board.NewResolver(board.NewTimeGrid(9, 21), catalog),
		Admission:        board.NewAdmission(catalog, board.DefaultNameLimit),
		Reservations:     h.reservations,
		DisabledPrograms: h.programs,
		DisabledTimes:    h.times,
		Events:           h.events,
		Location:         kst,
		Now:              func() time.Time { return h.clock },
	})
	return h
}
