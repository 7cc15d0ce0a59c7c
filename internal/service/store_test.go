package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// memStore is an in-memory Store. A transaction works on a copy of the
// state that replaces the original only when fn succeeds.
type memStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	rooms        map[uint64]model.Room
	seats        map[uint64]model.Seat
	reservations map[uint64]model.Reservation
	checkIns     map[uint64]model.CheckIn
	users        map[uint64]model.User
	nextID       uint64
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		rooms:        map[uint64]model.Room{},
		seats:        map[uint64]model.Seat{},
		reservations: map[uint64]model.Reservation{},
		checkIns:     map[uint64]model.CheckIn{},
		users:        map[uint64]model.User{},
		nextID:       100,
	}}
}

func (s memState) clone() memState {
	out := memState{
		rooms:        make(map[uint64]model.Room, len(s.rooms)),
		seats:        make(map[uint64]model.Seat, len(s.seats)),
		reservations: make(map[uint64]model.Reservation, len(s.reservations)),
		checkIns:     make(map[uint64]model.CheckIn, len(s.checkIns)),
		users:        make(map[uint64]model.User, len(s.users)),
		nextID:       s.nextID,
	}
	for k, v := range s.rooms {
		out.rooms[k] = v
	}
	for k, v := range s.seats {
		out.seats[k] = v
	}
	for k, v := range s.reservations {
		out.reservations[k] = v
	}
	for k, v := range s.checkIns {
		out.checkIns[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	return out
}

func (m *memStore) InTx(_ context.Context, fn func(tx repository.TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memTx{s: &work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

// seed helpers

func (m *memStore) addRoom(id uint64, name string) {
	m.state.rooms[id] = model.Room{ID: id, Name: name, Status: model.RoomOpen}
}

func (m *memStore) addSeat(id, roomID uint64, status string) {
	m.state.seats[id] = model.Seat{ID: id, RoomID: roomID, SeatNumber: "A" + string(rune('0'+id%10)), Status: status}
}

func (m *memStore) addUser(id uint64, role string) {
	m.state.users[id] = model.User{ID: id, Name: "user", Role: role}
}

func (m *memStore) seat(id uint64) model.Seat               { return m.state.seats[id] }
func (m *memStore) reservation(id uint64) model.Reservation { return m.state.reservations[id] }
func (m *memStore) checkIn(id uint64) model.CheckIn         { return m.state.checkIns[id] }
func (m *memStore) user(id uint64) model.User               { return m.state.users[id] }

func (m *memStore) ListByUser(_ context.Context, userID uint64) ([]model.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CheckIn
	for _, ci := range m.state.checkIns {
		if ci.UserID == userID {
			out = append(out, ci)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) ListDetailed(_ context.Context, userID *uint64) ([]model.ReservationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ReservationDetail
	for _, r := range m.state.reservations {
		if userID == nil || r.UserID == *userID {
			out = append(out, model.ReservationDetail{Reservation: r})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetDetail(_ context.Context, id uint64) (*model.ReservationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.state.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return &model.ReservationDetail{Reservation: r}, nil
}

type memTx struct{ s *memState }

func (t *memTx) id() uint64 {
	t.s.nextID++
	return t.s.nextID
}

func (t *memTx) GetRoom(_ context.Context, id uint64) (*model.Room, error) {
	r, ok := t.s.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return &r, nil
}

func (t *memTx) GetSeat(_ context.Context, id uint64, _ bool) (*model.Seat, error) {
	s, ok := t.s.seats[id]
	if !ok {
		return nil, repository.ErrSeatNotFound
	}
	return &s, nil
}

func (t *memTx) SetSeatStatus(_ context.Context, id uint64, status string) error {
	if s, ok := t.s.seats[id]; ok {
		s.Status = status
		t.s.seats[id] = s
	}
	return nil
}

func (t *memTx) GetReservation(_ context.Context, id uint64, _ bool) (*model.Reservation, error) {
	r, ok := t.s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return &r, nil
}

func (t *memTx) listActive(match func(model.Reservation) bool) []model.Reservation {
	var out []model.Reservation
	for _, r := range t.s.reservations {
		if r.IsActive() && match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (t *memTx) ListActiveByUserDate(_ context.Context, userID uint64, date string) ([]model.Reservation, error) {
	return t.listActive(func(r model.Reservation) bool { return r.UserID == userID && r.Date == date }), nil
}

func (t *memTx) ListActiveBySeatDate(_ context.Context, seatID uint64, date string) ([]model.Reservation, error) {
	return t.listActive(func(r model.Reservation) bool { return r.SeatID == seatID && r.Date == date }), nil
}

// slotTaken emulates the active_slot unique keys.
func (t *memTx) slotTaken(r *model.Reservation) bool {
	if !r.IsActive() {
		return false
	}
	for _, o := range t.s.reservations {
		if o.ID == r.ID || !o.IsActive() || o.Date != r.Date || o.StartTime != r.StartTime {
			continue
		}
		if o.SeatID == r.SeatID || o.UserID == r.UserID {
			return true
		}
	}
	return false
}

func (t *memTx) CreateReservation(_ context.Context, r *model.Reservation) error {
	if t.slotTaken(r) {
		return repository.ErrSlotTaken
	}
	r.ID = t.id()
	t.s.reservations[r.ID] = *r
	return nil
}

func (t *memTx) UpdateReservation(_ context.Context, r *model.Reservation) error {
	if _, ok := t.s.reservations[r.ID]; !ok {
		return repository.ErrReservationNotFound
	}
	if t.slotTaken(r) {
		return repository.ErrSlotTaken
	}
	t.s.reservations[r.ID] = *r
	return nil
}

func (t *memTx) DeleteReservation(_ context.Context, id uint64) error {
	if _, ok := t.s.reservations[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(t.s.reservations, id)
	return nil
}

func (t *memTx) GetCheckIn(_ context.Context, id uint64, _ bool) (*model.CheckIn, error) {
	ci, ok := t.s.checkIns[id]
	if !ok {
		return nil, repository.ErrCheckInNotFound
	}
	return &ci, nil
}

func (t *memTx) GetOpenCheckIn(_ context.Context, reservationID uint64) (*model.CheckIn, error) {
	for _, ci := range t.s.checkIns {
		if ci.ReservationID == reservationID && ci.Status == model.CheckInOpen {
			return &ci, nil
		}
	}
	return nil, repository.ErrCheckInNotFound
}

func (t *memTx) CreateCheckIn(_ context.Context, ci *model.CheckIn) error {
	ci.ID = t.id()
	t.s.checkIns[ci.ID] = *ci
	return nil
}

func (t *memTx) CloseCheckIn(_ context.Context, ci *model.CheckIn) error {
	t.s.checkIns[ci.ID] = *ci
	return nil
}

func (t *memTx) GetUser(_ context.Context, id uint64, _ bool) (*model.User, error) {
	u, ok := t.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (t *memTx) UpdateStudyStats(_ context.Context, u *model.User) error {
	t.s.users[u.ID] = *u
	return nil
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recorder) Publish(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
