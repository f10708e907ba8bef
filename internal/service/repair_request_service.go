package service

import (
	"context"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

// RepairRequestRequest is the full repair request payload. An empty status
// stores as pending.
type RepairRequestRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	RoomID      int64  `json:"room_id" validate:"required"`
	StaffID     int64  `json:"staff_id" validate:"required"`
}

// RepairRequestPatch lists the repair request fields to change.
type RepairRequestPatch struct {
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	RoomID      *int64  `json:"room_id"`
	StaffID     *int64  `json:"staff_id"`
}

// RepairRequestService manages repair requests.
type RepairRequestService = ResourceService[models.RepairRequest, RepairRequestRequest, RepairRequestPatch]

// NewRepairRequestService constructs the repair request service. Room and
// staff references resolve in the caller's scope.
func NewRepairRequestService(store Store[models.RepairRequest], rooms Finder[models.Room], staff Finder[models.Staff], opts ResourceOptions) *RepairRequestService {
	apply := func(ctx context.Context, scope models.Scope, repair *models.RepairRequest, req RepairRequestPatch) error {
		if req.Date != nil {
			parsed, err := parseDate("date", *req.Date)
			if err != nil {
				return err
			}
			repair.Date = parsed
		}
		if req.Description != nil {
			description, err := requiredText("description", *req.Description)
			if err != nil {
				return err
			}
			repair.Description = description
		}
		if req.Status != nil && *req.Status != "" {
			repair.Status = *req.Status
		}
		if req.RoomID != nil {
			room, err := resolve(ctx, rooms, scope, "room", *req.RoomID)
			if err != nil {
				return err
			}
			repair.RoomID = room.ID
		}
		if req.StaffID != nil {
			member, err := resolve(ctx, staff, scope, "staff", *req.StaffID)
			if err != nil {
				return err
			}
			repair.StaffID = member.ID
		}
		return nil
	}

	return NewResourceService(store, Schema[models.RepairRequest, RepairRequestRequest, RepairRequestPatch]{
		Resource: "repair_request",
		ID:       func(repair *models.RepairRequest) int64 { return repair.ID },
		Assign: func(ctx context.Context, scope models.Scope, repair *models.RepairRequest, req RepairRequestRequest) error {
			status := req.Status
			if status == "" {
				status = models.RepairStatusPending
			}
			return apply(ctx, scope, repair, RepairRequestPatch{
				Date:        &req.Date,
				Description: &req.Description,
				Status:      &status,
				RoomID:      &req.RoomID,
				StaffID:     &req.StaffID,
			})
		},
		Patch: apply,
	}, opts)
}
