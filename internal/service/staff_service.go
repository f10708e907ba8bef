package service

import (
	"context"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

// StaffRequest is the full staff payload.
type StaffRequest struct {
	Name string `json:"name" validate:"required"`
	Post string `json:"post" validate:"required"`
}

// StaffPatch lists the staff fields to change.
type StaffPatch struct {
	Name *string `json:"name"`
	Post *string `json:"post"`
}

// StaffService manages staff members.
type StaffService = ResourceService[models.Staff, StaffRequest, StaffPatch]

// NewStaffService constructs the staff service.
func NewStaffService(store Store[models.Staff], opts ResourceOptions) *StaffService {
	return NewResourceService(store, Schema[models.Staff, StaffRequest, StaffPatch]{
		Resource: "staff",
		ID:       func(member *models.Staff) int64 { return member.ID },
		Assign: func(_ context.Context, _ models.Scope, member *models.Staff, req StaffRequest) error {
			return applyStaff(member, &req.Name, &req.Post)
		},
		Patch: func(_ context.Context, _ models.Scope, member *models.Staff, req StaffPatch) error {
			return applyStaff(member, req.Name, req.Post)
		},
	}, opts)
}

func applyStaff(member *models.Staff, name, post *string) error {
	if name != nil {
		value, err := requiredText("name", *name)
		if err != nil {
			return err
		}
		member.Name = value
	}
	if post != nil {
		value, err := requiredText("post", *post)
		if err != nil {
			return err
		}
		member.Post = value
	}
	return nil
}
