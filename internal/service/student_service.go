package service

import (
	"context"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

// StudentRequest is the full student payload. A nil RoomID leaves the
// student without a room.
type StudentRequest struct {
	Name   string `json:"name" validate:"required"`
	Group  string `json:"group" validate:"required"`
	RoomID *int64 `json:"room_id"`
}

// StudentPatch lists the student fields to change. An explicit null room_id
// moves the student out of their room.
type StudentPatch struct {
	Name   *string           `json:"name"`
	Group  *string           `json:"group"`
	RoomID models.OptionalID `json:"room_id"`
}

// StudentService manages dormitory residents.
type StudentService = ResourceService[models.Student, StudentRequest, StudentPatch]

// NewStudentService constructs the student service. Room references resolve
// through rooms in the caller's scope.
func NewStudentService(store Store[models.Student], rooms Finder[models.Room], opts ResourceOptions) *StudentService {
	assignRoom := func(ctx context.Context, scope models.Scope, student *models.Student, roomID *int64) error {
		if roomID == nil {
			student.RoomID = nil
			return nil
		}
		room, err := resolve(ctx, rooms, scope, "room", *roomID)
		if err != nil {
			return err
		}
		student.RoomID = &room.ID
		return nil
	}

	return NewResourceService(store, Schema[models.Student, StudentRequest, StudentPatch]{
		Resource: "student",
		ID:       func(student *models.Student) int64 { return student.ID },
		Assign: func(ctx context.Context, scope models.Scope, student *models.Student, req StudentRequest) error {
			if err := applyStudent(student, &req.Name, &req.Group); err != nil {
				return err
			}
			return assignRoom(ctx, scope, student, req.RoomID)
		},
		Patch: func(ctx context.Context, scope models.Scope, student *models.Student, req StudentPatch) error {
			if err := applyStudent(student, req.Name, req.Group); err != nil {
				return err
			}
			if !req.RoomID.Set {
				return nil
			}
			return assignRoom(ctx, scope, student, req.RoomID.Value)
		},
	}, opts)
}

func applyStudent(student *models.Student, name, group *string) error {
	if name != nil {
		value, err := requiredText("name", *name)
		if err != nil {
			return err
		}
		student.Name = value
	}
	if group != nil {
		value, err := requiredText("group", *group)
		if err != nil {
			return err
		}
		student.Group = value
	}
	return nil
}
