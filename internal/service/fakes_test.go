package service

import (
	"context"
	"database/sql"
	"sort"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

// memoryStore is an in-memory Store that honours scopes like the SQL
// repositories do.
type memoryStore[T any] struct {
	rows      map[int64]T
	nextID    int64
	keys      func(item *T) (id, owner int64)
	setKeys   func(item *T, id, owner int64)
	hydrate   func(item *T)
	deleteErr error
	// afterStats runs once the aggregate has been computed.
	afterStats func()
}

func newMemoryStore[T any](keys func(*T) (int64, int64), setKeys func(*T, int64, int64)) *memoryStore[T] {
	return &memoryStore[T]{rows: map[int64]T{}, keys: keys, setKeys: setKeys}
}

func (m *memoryStore[T]) visible(scope models.Scope, id int64) (T, bool) {
	item, ok := m.rows[id]
	if !ok {
		return item, false
	}
	_, owner := m.keys(&item)
	return item, scope.Visible(owner)
}

func (m *memoryStore[T]) List(_ context.Context, scope models.Scope) ([]T, error) {
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []T{}
	for _, id := range ids {
		if item, ok := m.visible(scope, id); ok {
			if m.hydrate != nil {
				m.hydrate(&item)
			}
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memoryStore[T]) FindByID(_ context.Context, scope models.Scope, id int64) (*T, error) {
	item, ok := m.visible(scope, id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	if m.hydrate != nil {
		m.hydrate(&item)
	}
	return &item, nil
}

func (m *memoryStore[T]) Create(_ context.Context, ownerID int64, item *T) error {
	m.nextID++
	m.setKeys(item, m.nextID, ownerID)
	m.rows[m.nextID] = *item
	return nil
}

func (m *memoryStore[T]) Update(_ context.Context, scope models.Scope, item *T) error {
	id, _ := m.keys(item)
	if _, ok := m.visible(scope, id); !ok {
		return sql.ErrNoRows
	}
	m.rows[id] = *item
	return nil
}

func (m *memoryStore[T]) Delete(_ context.Context, scope models.Scope, id int64) error {
	if _, ok := m.visible(scope, id); !ok {
		return sql.ErrNoRows
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryStore[T]) Stats(_ context.Context, scope models.Scope) (*models.ResourceStats, error) {
	stats := &models.ResourceStats{}
	var sum int64
	for id := range m.rows {
		if _, ok := m.visible(scope, id); !ok {
			continue
		}
		stats.Count++
		sum += id
		if stats.Max == nil || id > *stats.Max {
			max := id
			stats.Max = &max
		}
		if stats.Min == nil || id < *stats.Min {
			min := id
			stats.Min = &min
		}
	}
	if stats.Count > 0 {
		avg := float64(sum) / float64(stats.Count)
		stats.Avg = &avg
	}
	if m.afterStats != nil {
		m.afterStats()
	}
	return stats, nil
}

type dormFixture struct {
	rooms    *memoryStore[models.Room]
	staff    *memoryStore[models.Staff]
	students *memoryStore[models.Student]
	duties   *memoryStore[models.DutySchedule]
	repairs  *memoryStore[models.RepairRequest]
}

func newDormFixture() *dormFixture {
	f := &dormFixture{
		rooms: newMemoryStore(
			func(r *models.Room) (int64, int64) { return r.ID, r.OwnerID },
			func(r *models.Room, id, owner int64) { r.ID, r.OwnerID = id, owner },
		),
		staff: newMemoryStore(
			func(s *models.Staff) (int64, int64) { return s.ID, s.OwnerID },
			func(s *models.Staff, id, owner int64) { s.ID, s.OwnerID = id, owner },
		),
		students: newMemoryStore(
			func(s *models.Student) (int64, int64) { return s.ID, s.OwnerID },
			func(s *models.Student, id, owner int64) { s.ID, s.OwnerID = id, owner },
		),
		duties: newMemoryStore(
			func(d *models.DutySchedule) (int64, int64) { return d.ID, d.OwnerID },
			func(d *models.DutySchedule, id, owner int64) { d.ID, d.OwnerID = id, owner },
		),
		repairs: newMemoryStore(
			func(r *models.RepairRequest) (int64, int64) { return r.ID, r.OwnerID },
			func(r *models.RepairRequest, id, owner int64) { r.ID, r.OwnerID = id, owner },
		),
	}
	f.students.hydrate = func(s *models.Student) {
		s.Room = nil
		if s.RoomID == nil {
			return
		}
		if room, ok := f.rooms.rows[*s.RoomID]; ok {
			s.Room = &models.RoomRef{ID: room.ID, Number: room.Number}
		}
	}
	f.duties.hydrate = func(d *models.DutySchedule) {
		student := f.students.rows[d.StudentID]
		d.Student = &models.StudentRef{ID: student.ID, Name: student.Name, Group: student.Group}
	}
	f.repairs.hydrate = func(r *models.RepairRequest) {
		room := f.rooms.rows[r.RoomID]
		member := f.staff.rows[r.StaffID]
		r.Room = &models.RoomRef{ID: room.ID, Number: room.Number}
		r.Staff = &models.StaffRef{ID: member.ID, Name: member.Name, Post: member.Post}
	}
	return f
}
