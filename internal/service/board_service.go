package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/arcade-reservation-board/internal/board"
	"github.com/iliyamo/arcade-reservation-board/internal/model"
	"github.com/iliyamo/arcade-reservation-board/internal/queue"
	"github.com/iliyamo/arcade-reservation-board/internal/repository"
)

// MaxPeople is the largest party one reservation may cover.
const MaxPeople = 4

// publishTimeout bounds a single best-effort event delivery.
const publishTimeout = 5 * time.Second

// BoardDeps are the collaborators of a BoardService.  Events and Now are
// optional.
type BoardDeps struct {
	Resolver         *board.Resolver
	Admission        *board.Admission
	Reservations     ReservationStore
	DisabledPrograms LabelStore
	DisabledTimes    LabelStore
	Events           EventPublisher
	Log              *zap.Logger
	Location         *time.Location
	Now              func() time.Time
}

// ProposeRequest is a walk-up booking of one grid cell.
type ProposeRequest struct {
	Name   string
	People int
	Row    int
	Col    int
}

// BoardService owns the published board snapshot and every operation that
// changes the board.
type BoardService struct {
	resolver     *board.Resolver
	admission    *board.Admission
	reservations ReservationStore
	programs     LabelStore
	times        LabelStore
	events       EventPublisher
	log          *zap.Logger
	loc          *time.Location
	now          func() time.Time

	// mu serializes every load-and-swap of the snapshot, proposals
	// included.
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
	wg   sync.WaitGroup
}

// NewBoardService wires a BoardService.  The initial snapshot is empty
// until the first refresh.
func NewBoardService(d BoardDeps) *BoardService {
	s := &BoardService{
		resolver:     d.Resolver,
		admission:    d.Admission,
		reservations: d.Reservations,
		programs:     d.DisabledPrograms,
		times:        d.DisabledTimes,
		events:       d.Events,
		log:          d.Log,
		loc:          d.Location,
		now:          d.Now,
	}
	if s.events == nil {
		s.events = NopPublisher{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.snap.Store(emptySnapshot().withClock(s.resolver, s.Now()))
	return s
}

// Resolver exposes the grid and catalog the service was built with.
func (s *BoardService) Resolver() *board.Resolver { return s.resolver }

// Now is the current board time in the board's location.
func (s *BoardService) Now() time.Time { return s.now().In(s.loc) }

// Location is the board's time zone.
func (s *BoardService) Location() *time.Location { return s.loc }

// Snapshot returns the currently published board.
func (s *BoardService) Snapshot() *Snapshot { return s.snap.Load() }

// RefreshReservations reloads reservations from the store and publishes a
// new snapshot.
func (s *BoardService) RefreshReservations(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.loadReservationsLocked(ctx)
	return err
}

// RefreshDisabled reloads the disabled programs and time labels.
func (s *BoardService) RefreshDisabled(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.loadDisabledLocked(ctx)
	return err
}

// Tick restamps the expiry flags for now.
func (s *BoardService) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Store(s.snap.Load().withClock(s.resolver, now.In(s.loc)))
}

func (s *BoardService) loadReservationsLocked(ctx context.Context) (*Snapshot, error) {
	stored, err := s.reservations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	resolved := make([]model.Reservation, len(stored))
	for i, res := range stored {
		row, werr := s.resolver.ResolveRow(res.EffectiveTime, res.Program)
		if werr != nil {
			s.log.Warn("reservation row fallback",
				zap.Uint64("reservation_id", res.ID),
				zap.Int("row", row),
				zap.Error(werr))
		}
		res.Row = row
		if col := s.resolver.Catalog().Col(res.Program); col >= 0 {
			res.Col = col
		} else {
			s.log.Warn("reservation for unknown program",
				zap.Uint64("reservation_id", res.ID), zap.String("program", res.Program))
		}
		resolved[i] = res
	}
	next := s.snap.Load().withReservations(s.resolver, resolved)
	s.snap.Store(next)
	return next, nil
}

func (s *BoardService) loadDisabledLocked(ctx context.Context) (*Snapshot, error) {
	programs, err := s.programs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list disabled programs: %w", err)
	}
	times, err := s.times.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list disabled times: %w", err)
	}
	next := s.snap.Load().withDisabled(programs, times)
	s.snap.Store(next)
	return next, nil
}

// Propose validates and stores a booking.  Rejections are returned as
// *RejectionError; anything else is a store failure.
func (s *BoardService) Propose(ctx context.Context, req ProposeRequest) (model.Reservation, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.People < 1 || req.People > MaxPeople {
		return model.Reservation{}, reject(board.ReasonInvalidInput)
	}
	program, ok := s.resolver.Catalog().Program(req.Col)
	if !ok {
		return model.Reservation{}, reject(board.ReasonInvalidInput)
	}
	effective, err := s.resolver.EffectiveTimeForCell(req.Row, req.Col)
	if err != nil {
		return model.Reservation{}, reject(board.ReasonInvalidInput)
	}
	row := s.resolver.BaseRow(req.Row, req.Col)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadDisabledLocked(ctx); err != nil {
		return model.Reservation{}, err
	}
	snap, err := s.loadReservationsLocked(ctx)
	if err != nil {
		return model.Reservation{}, err
	}

	if _, taken := snap.ReservationAt(row, req.Col); taken {
		return model.Reservation{}, reject(board.ReasonCellTaken)
	}
	if snap.ProgramDisabled(program) {
		return model.Reservation{}, reject(board.ReasonProgramDisabled)
	}
	for _, label := range s.coveredLabels(row, program) {
		if snap.TimeDisabled(label) {
			return model.Reservation{}, reject(board.ReasonTimeDisabled)
		}
	}
	now := s.Now()
	if board.IsExpired(effective, now) {
		return model.Reservation{}, reject(board.ReasonExpired)
	}
	if d := s.admission.CanAdmit(name, effective, program, snap.Reservations); !d.Accepted {
		return model.Reservation{}, reject(d.Reason)
	}

	res := model.Reservation{
		Row:           row,
		Col:           req.Col,
		Program:       program,
		Name:          name,
		People:        req.People,
		EffectiveTime: effective,
	}
	if err := s.reservations.Create(ctx, &res); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.Reservation{}, reject(board.ReasonCellTaken)
		}
		return model.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}

	rs := make([]model.Reservation, 0, len(snap.Reservations)+1)
	rs = append(rs, snap.Reservations...)
	rs = append(rs, res)
	s.snap.Store(snap.withReservations(s.resolver, rs))

	ev := queue.NewEvent(queue.TypeReservationCreated, now)
	ev.ReservationID = res.ID
	ev.Program = res.Program
	ev.EffectiveTime = res.EffectiveTime
	ev.Name = res.Name
	ev.People = res.People
	s.emit(ev)

	s.log.Info("reservation created",
		zap.Uint64("reservation_id", res.ID),
		zap.String("program", res.Program),
		zap.String("effective_time", res.EffectiveTime),
		zap.Int("people", res.People))
	return res, nil
}

// Cancel removes a reservation.  repository.ErrNotFound is passed through
// wrapped.
func (s *BoardService) Cancel(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var gone model.Reservation
	for _, res := range s.snap.Load().Reservations {
		if res.ID == id {
			gone = res
			break
		}
	}
	if err := s.reservations.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete reservation %d: %w", id, err)
	}
	if _, err := s.loadReservationsLocked(ctx); err != nil {
		s.log.Warn("reload after cancel failed", zap.Error(err))
	}

	ev := queue.NewEvent(queue.TypeReservationCancelled, s.Now())
	ev.ReservationID = id
	ev.Program = gone.Program
	ev.EffectiveTime = gone.EffectiveTime
	ev.Name = gone.Name
	ev.People = gone.People
	s.emit(ev)
	s.log.Info("reservation cancelled", zap.Uint64("reservation_id", id))
	return nil
}

// SetProgramDisabled switches a program off or back on.
func (s *BoardService) SetProgramDisabled(ctx context.Context, program string, disabled bool) error {
	if !s.resolver.Catalog().Has(program) {
		return ErrUnknownProgram
	}
	if err := s.toggle(ctx, s.programs, program, disabled); err != nil {
		return fmt.Errorf("toggle program %q: %w", program, err)
	}
	ev := queue.NewEvent(queue.TypeProgramToggled, s.Now())
	ev.Program = program
	ev.Disabled = &disabled
	s.emit(ev)
	return nil
}

// SetTimeDisabled switches a time slot off or back on.
func (s *BoardService) SetTimeDisabled(ctx context.Context, label string, disabled bool) error {
	if s.resolver.Grid().Index(label) < 0 {
		return ErrUnknownTime
	}
	if err := s.toggle(ctx, s.times, label, disabled); err != nil {
		return fmt.Errorf("toggle time %q: %w", label, err)
	}
	ev := queue.NewEvent(queue.TypeTimeToggled, s.Now())
	ev.EffectiveTime = label
	ev.Disabled = &disabled
	s.emit(ev)
	return nil
}

func (s *BoardService) toggle(ctx context.Context, store LabelStore, value string, disabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if disabled {
		err = store.Insert(ctx, value)
	} else {
		err = store.Delete(ctx, value)
	}
	if err != nil {
		return err
	}
	if _, err := s.loadDisabledLocked(ctx); err != nil {
		s.log.Warn("reload after toggle failed", zap.Error(err))
	}
	return nil
}

// coveredLabels lists the grid labels a booking at (row, program) spans:
// one for ordinary programs, two for merged ones.
func (s *BoardService) coveredLabels(row int, program string) []string {
	var out []string
	span := 1
	if s.resolver.Catalog().IsMerged(program) {
		span = 2
	}
	for i := 0; i < span; i++ {
		if l, ok := s.resolver.Grid().Label(row + i); ok {
			out = append(out, l)
		}
	}
	return out
}

// emit publishes ev in the background.
func (s *BoardService) emit(ev queue.BoardEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn("publish board event failed", zap.String("type", ev.Type), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight event deliveries finish.
func (s *BoardService) Wait() { s.wg.Wait() }
