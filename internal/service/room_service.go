package service

import (
	"context"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

// RoomRequest is the full room payload.
type RoomRequest struct {
	Number string `json:"number" validate:"required"`
}

// RoomPatch lists the room fields to change.
type RoomPatch struct {
	Number *string `json:"number"`
}

// RoomService manages rooms.
type RoomService = ResourceService[models.Room, RoomRequest, RoomPatch]

// NewRoomService constructs the room service.
func NewRoomService(store Store[models.Room], opts ResourceOptions) *RoomService {
	return NewResourceService(store, Schema[models.Room, RoomRequest, RoomPatch]{
		Resource: "room",
		ID:       func(room *models.Room) int64 { return room.ID },
		Assign: func(_ context.Context, _ models.Scope, room *models.Room, req RoomRequest) error {
			number, err := requiredText("number", req.Number)
			if err != nil {
				return err
			}
			room.Number = number
			return nil
		},
		Patch: func(_ context.Context, _ models.Scope, room *models.Room, req RoomPatch) error {
			if req.Number == nil {
				return nil
			}
			number, err := requiredText("number", *req.Number)
			if err != nil {
				return err
			}
			room.Number = number
			return nil
		},
	}, opts)
}
