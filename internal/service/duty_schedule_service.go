package service

import (
	"context"

	"github.com/noah-isme/dorm-admin-api/internal/models"
)

// DutyScheduleRequest is the full duty schedule payload.
type DutyScheduleRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StudentID int64  `json:"student_id" validate:"required"`
}

// DutySchedulePatch lists the duty schedule fields to change.
type DutySchedulePatch struct {
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StudentID *int64  `json:"student_id"`
}

// DutyScheduleService manages duty assignments.
type DutyScheduleService = ResourceService[models.DutySchedule, DutyScheduleRequest, DutySchedulePatch]

// NewDutyScheduleService constructs the duty schedule service. Student
// references resolve through students in the caller's scope.
func NewDutyScheduleService(store Store[models.DutySchedule], students Finder[models.Student], opts ResourceOptions) *DutyScheduleService {
	apply := func(ctx context.Context, scope models.Scope, duty *models.DutySchedule, date *string, studentID *int64) error {
		if date != nil {
			parsed, err := parseDate("date", *date)
			if err != nil {
				return err
			}
			duty.Date = parsed
		}
		if studentID != nil {
			student, err := resolve(ctx, students, scope, "student", *studentID)
			if err != nil {
				return err
			}
			duty.StudentID = student.ID
		}
		return nil
	}

	return NewResourceService(store, Schema[models.DutySchedule, DutyScheduleRequest, DutySchedulePatch]{
		Resource: "duty_schedule",
		ID:       func(duty *models.DutySchedule) int64 { return duty.ID },
		Assign: func(ctx context.Context, scope models.Scope, duty *models.DutySchedule, req DutyScheduleRequest) error {
			return apply(ctx, scope, duty, &req.Date, &req.StudentID)
		},
		Patch: func(ctx context.Context, scope models.Scope, duty *models.DutySchedule, req DutySchedulePatch) error {
			return apply(ctx, scope, duty, req.Date, req.StudentID)
		},
	}, opts)
}
