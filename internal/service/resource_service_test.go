package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-admin-api/internal/models"
	"github.com/noah-isme/dorm-admin-api/internal/repository"
	appErrors "github.com/noah-isme/dorm-admin-api/pkg/errors"
)

var (
	alice = models.Scope{AccountID: 1}
	bob   = models.Scope{AccountID: 2}
	admin = models.Scope{AccountID: 3, Privileged: true}
)

func errorCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected typed error, got %v", err)
	return appErr.Code
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func TestRoomServiceCreateRoundTrip(t *testing.T) {
	fx := newDormFixture()
	svc := NewRoomService(fx.rooms, ResourceOptions{})
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, RoomRequest{Number: " 101 "})
	require.NoError(t, err)
	assert.Equal(t, "101", created.Number)
	assert.Equal(t, alice.AccountID, created.OwnerID)

	loaded, err := svc.Get(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}

func TestRoomServiceRejectsBlankNumber(t *testing.T) {
	svc := NewRoomService(newDormFixture().rooms, ResourceOptions{})

	_, err := svc.Create(context.Background(), alice, RoomRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, err))

	_, err = svc.Create(context.Background(), alice, RoomRequest{Number: "   "})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, err))
}

func TestOwnershipScopesReadsAndWrites(t *testing.T) {
	fx := newDormFixture()
	svc := NewStaffService(fx.staff, ResourceOptions{})
	ctx := context.Background()

	own, err := svc.Create(ctx, alice, StaffRequest{Name: "Olga", Post: "Warden"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, StaffRequest{Name: "Pavel", Post: "Plumber"})
	require.NoError(t, err)

	aliceView, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceView, 1)
	assert.Equal(t, "Olga", aliceView[0].Name)

	adminView, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, adminView, 2)

	_, err = svc.Get(ctx, bob, own.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(t, err))

	_, err = svc.Update(ctx, bob, own.ID, StaffPatch{Post: strPtr("Cook")})
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(t, err))

	err = svc.Delete(ctx, bob, own.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(t, err))

	updated, err := svc.Update(ctx, admin, own.ID, StaffPatch{Post: strPtr("Senior warden")})
	require.NoError(t, err)
	assert.Equal(t, "Olga", updated.Name)
	assert.Equal(t, "Senior warden", updated.Post)
	assert.Equal(t, alice.AccountID, updated.OwnerID)
}

func TestStudentServiceEmbedsRoom(t *testing.T) {
	fx := newDormFixture()
	rooms := NewRoomService(fx.rooms, ResourceOptions{})
	students := NewStudentService(fx.students, fx.rooms, ResourceOptions{})
	ctx := context.Background()

	room, err := rooms.Create(ctx, alice, RoomRequest{Number: "101"})
	require.NoError(t, err)

	student, err := students.Create(ctx, alice, StudentRequest{Name: "Anna", Group: "IST-22", RoomID: &room.ID})
	require.NoError(t, err)
	require.NotNil(t, student.Room)
	assert.Equal(t, "101", student.Room.Number)

	loose, err := students.Create(ctx, alice, StudentRequest{Name: "Ivan", Group: "IST-22"})
	require.NoError(t, err)
	assert.Nil(t, loose.Room)
}

func TestStudentServiceRejectsForeignRoom(t *testing.T) {
	fx := newDormFixture()
	rooms := NewRoomService(fx.rooms, ResourceOptions{})
	students := NewStudentService(fx.students, fx.rooms, ResourceOptions{})
	ctx := context.Background()

	bobsRoom, err := rooms.Create(ctx, bob, RoomRequest{Number: "202"})
	require.NoError(t, err)

	_, err = students.Create(ctx, alice, StudentRequest{Name: "Anna", Group: "IST-22", RoomID: &bobsRoom.ID})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, err))

	_, err = students.Create(ctx, alice, StudentRequest{Name: "Anna", Group: "IST-22", RoomID: int64Ptr(99)})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, err))
}

func TestStudentServicePatchRoomAssignment(t *testing.T) {
	fx := newDormFixture()
	rooms := NewRoomService(fx.rooms, ResourceOptions{})
	students := NewStudentService(fx.students, fx.rooms, ResourceOptions{})
	ctx := context.Background()

	room, err := rooms.Create(ctx, alice, RoomRequest{Number: "101"})
	require.NoError(t, err)
	student, err := students.Create(ctx, alice, StudentRequest{Name: "Anna", Group: "IST-22", RoomID: &room.ID})
	require.NoError(t, err)

	renamed, err := students.Update(ctx, alice, student.ID, StudentPatch{Name: strPtr("Anna P.")})
	require.NoError(t, err)
	assert.Equal(t, "Anna P.", renamed.Name)
	require.NotNil(t, renamed.Room)
	assert.Equal(t, room.ID, renamed.Room.ID)

	cleared, err := students.Update(ctx, alice, student.ID, StudentPatch{RoomID: models.OptionalID{Set: true}})
	require.NoError(t, err)
	assert.Nil(t, cleared.Room)
	assert.Equal(t, "IST-22", cleared.Group)

	moved, err := students.Update(ctx, alice, student.ID, StudentPatch{RoomID: models.SetID(room.ID)})
	require.NoError(t, err)
	require.NotNil(t, moved.Room)
}

func TestStudentServiceReplaceKeepsIdentity(t *testing.T) {
	fx := newDormFixture()
	students := NewStudentService(fx.students, fx.rooms, ResourceOptions{})
	ctx := context.Background()

	student, err := students.Create(ctx, alice, StudentRequest{Name: "Anna", Group: "IST-22"})
	require.NoError(t, err)

	replaced, err := students.Replace(ctx, admin, student.ID, StudentRequest{Name: "Maria", Group: "IST-23"})
	require.NoError(t, err)
	assert.Equal(t, student.ID, replaced.ID)
	assert.Equal(t, alice.AccountID, replaced.OwnerID)
	assert.Equal(t, "Maria", replaced.Name)
	assert.Equal(t, "IST-23", replaced.Group)
}

func TestRepairRequestPartialUpdateKeepsOtherFields(t *testing.T) {
	fx := newDormFixture()
	ctx := context.Background()
	rooms := NewRoomService(fx.rooms, ResourceOptions{})
	staff := NewStaffService(fx.staff, ResourceOptions{})
	repairs := NewRepairRequestService(fx.repairs, fx.rooms, fx.staff, ResourceOptions{})

	room, err := rooms.Create(ctx, alice, RoomRequest{Number: "101"})
	require.NoError(t, err)
	member, err := staff.Create(ctx, alice, StaffRequest{Name: "Ivan", Post: "Plumber"})
	require.NoError(t, err)

	repair, err := repairs.Create(ctx, alice, RepairRequestRequest{
		Date:        "2024-05-05",
		Description: "Leaking tap",
		RoomID:      room.ID,
		StaffID:     member.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RepairStatusPending, repair.Status)
	assert.Equal(t, "101", repair.Room.Number)
	assert.Equal(t, "Plumber", repair.Staff.Post)

	updated, err := repairs.Update(ctx, alice, repair.ID, RepairRequestPatch{Status: strPtr(models.RepairStatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.RepairStatusCompleted, updated.Status)
	assert.Equal(t, models.NewDate(2024, time.May, 5), updated.Date)
	assert.Equal(t, room.ID, updated.Room.ID)
	assert.Equal(t, member.ID, updated.Staff.ID)
	assert.Equal(t, "Leaking tap", updated.Description)
}

func TestRepairRequestValidation(t *testing.T) {
	fx := newDormFixture()
	ctx := context.Background()
	repairs := NewRepairRequestService(fx.repairs, fx.rooms, fx.staff, ResourceOptions{})

	_, err := repairs.Create(ctx, alice, RepairRequestRequest{Date: "05.05.2024", Description: "x", RoomID: 1, StaffID: 1})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, err))

	_, err = repairs.Create(ctx, alice, RepairRequestRequest{Date: "2024-05-05", Description: "x", Status: "lost", RoomID: 1, StaffID: 1})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, err))

	_, err = repairs.Create(ctx, alice, RepairRequestRequest{Date: "2024-05-05", Description: "x", RoomID: 1, StaffID: 1})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, err))
}

func TestDutyScheduleServiceResolvesStudent(t *testing.T) {
	fx := newDormFixture()
	ctx := context.Background()
	students := NewStudentService(fx.students, fx.rooms, ResourceOptions{})
	duties := NewDutyScheduleService(fx.duties, fx.students, ResourceOptions{})

	student, err := students.Create(ctx, alice, StudentRequest{Name: "Anna", Group: "IST-22"})
	require.NoError(t, err)

	duty, err := duties.Create(ctx, alice, DutyScheduleRequest{Date: "2024-03-01", StudentID: student.ID})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", duty.Date.String())
	assert.Equal(t, &models.StudentRef{ID: student.ID, Name: "Anna", Group: "IST-22"}, duty.Student)

	moved, err := duties.Update(ctx, alice, duty.ID, DutySchedulePatch{Date: strPtr("2024-03-02")})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", moved.Date.String())
	assert.Equal(t, student.ID, moved.Student.ID)

	_, err = duties.Create(ctx, bob, DutyScheduleRequest{Date: "2024-03-01", StudentID: student.ID})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, err))
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	fx := newDormFixture()
	svc := NewRoomService(fx.rooms, ResourceOptions{})
	ctx := context.Background()

	room, err := svc.Create(ctx, alice, RoomRequest{Number: "101"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, alice, room.ID))

	_, err = svc.Get(ctx, alice, room.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(t, err))

	err = svc.Delete(ctx, alice, room.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(t, err))
}

func TestDeleteReferencedRecordConflicts(t *testing.T) {
	fx := newDormFixture()
	svc := NewStaffService(fx.staff, ResourceOptions{})
	ctx := context.Background()

	member, err := svc.Create(ctx, alice, StaffRequest{Name: "Ivan", Post: "Plumber"})
	require.NoError(t, err)
	fx.staff.deleteErr = &pq.Error{Code: "23503"}

	err = svc.Delete(ctx, alice, member.ID)
	assert.Equal(t, appErrors.ErrConflict.Code, errorCode(t, err))
}

func TestStatsEmptyCollection(t *testing.T) {
	svc := NewRoomService(newDormFixture().rooms, ResourceOptions{})

	stats, err := svc.Stats(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Count)
	assert.Nil(t, stats.Avg)
	assert.Nil(t, stats.Max)
	assert.Nil(t, stats.Min)
}

func TestStatsAfterDeletingFourthStudent(t *testing.T) {
	fx := newDormFixture()
	svc := NewStudentService(fx.students, fx.rooms, ResourceOptions{})
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 10; i++ {
		student, err := svc.Create(ctx, alice, StudentRequest{Name: "Student", Group: "G"})
		require.NoError(t, err)
		ids = append(ids, student.ID)
	}
	require.NoError(t, svc.Delete(ctx, alice, ids[3]))

	stats, err := svc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(9), stats.Count)
	assert.InDelta(t, 51.0/9.0, *stats.Avg, 1e-9)
	assert.Equal(t, int64(10), *stats.Max)
	assert.Equal(t, int64(1), *stats.Min)

	remaining, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, remaining, 9)
	listed := make([]int64, 0, len(remaining))
	for _, student := range remaining {
		listed = append(listed, student.ID)
	}
	assert.NotContains(t, listed, ids[3])
	assert.Equal(t, append(append([]int64{}, ids[:3]...), ids[4:]...), listed)
}

func TestStatsAreScoped(t *testing.T) {
	fx := newDormFixture()
	svc := NewRoomService(fx.rooms, ResourceOptions{})
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, RoomRequest{Number: "101"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, RoomRequest{Number: "102"})
	require.NoError(t, err)

	own, err := svc.Stats(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), own.Count)
	assert.Equal(t, int64(2), *own.Min)

	all, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Count)
	assert.Equal(t, 1.5, *all.Avg)
}

func TestStatsNotCachedWhenWriteRacesComputation(t *testing.T) {
	fx := newDormFixture()
	cache := NewCacheService(repository.NewMemoryCacheRepository(time.Minute, time.Minute), NewMetricsService(), time.Minute, nil)
	svc := NewRoomService(fx.rooms, ResourceOptions{Cache: cache})
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, RoomRequest{Number: "101"})
	require.NoError(t, err)
	fx.rooms.afterStats = func() {
		fx.rooms.afterStats = nil
		_, err := svc.Create(ctx, alice, RoomRequest{Number: "102"})
		require.NoError(t, err)
	}

	stale, err := svc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stale.Count)

	var cached models.ResourceStats
	assert.False(t, cache.Get(ctx, StatsKey("room", alice), &cached))

	fresh, err := svc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Count)
}

func TestCacheSetFreshSkipsInvalidatedGeneration(t *testing.T) {
	cache := NewCacheService(repository.NewMemoryCacheRepository(time.Minute, time.Minute), nil, time.Minute, nil)
	ctx := context.Background()
	pattern := StatsPattern("room")
	key := StatsKey("room", alice)

	generation := cache.Generation(pattern)
	cache.Invalidate(ctx, pattern)
	cache.SetFresh(ctx, pattern, generation, key, models.ResourceStats{Count: 5}, 0)

	var cached models.ResourceStats
	assert.False(t, cache.Get(ctx, key, &cached))

	cache.SetFresh(ctx, pattern, cache.Generation(pattern), key, models.ResourceStats{Count: 6}, 0)
	require.True(t, cache.Get(ctx, key, &cached))
	assert.Equal(t, int64(6), cached.Count)
}

func TestStatsCacheInvalidatedOnWrite(t *testing.T) {
	fx := newDormFixture()
	cache := NewCacheService(repository.NewMemoryCacheRepository(time.Minute, time.Minute), NewMetricsService(), time.Minute, nil)
	svc := NewRoomService(fx.rooms, ResourceOptions{Cache: cache})
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, RoomRequest{Number: "101"})
	require.NoError(t, err)
	first, err := svc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Count)

	var cached models.ResourceStats
	assert.True(t, cache.Get(ctx, StatsKey("room", alice), &cached))

	_, err = svc.Create(ctx, alice, RoomRequest{Number: "102"})
	require.NoError(t, err)
	second, err := svc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Count)
}
