package models

// DutySchedule assigns a student to duty on a date.
type DutySchedule struct {
	ID        int64       `db:"id" json:"id"`
	Date      Date        `db:"date" json:"date"`
	StudentID int64       `db:"student_id" json:"-"`
	Student   *StudentRef `db:"-" json:"student"`
	OwnerID   int64       `db:"user_id" json:"owner_id"`
}
