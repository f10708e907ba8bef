package models

// Repair request statuses.
const (
	RepairStatusPending    = "pending"
	RepairStatusInProgress = "in_progress"
	RepairStatusCompleted  = "completed"
	RepairStatusCancelled  = "cancelled"
)

// RepairRequest records a maintenance job for a room handled by a staff member.
type RepairRequest struct {
	ID          int64     `db:"id" json:"id"`
	Date        Date      `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	RoomID      int64     `db:"room_id" json:"-"`
	Room        *RoomRef  `db:"-" json:"room"`
	StaffID     int64     `db:"staff_id" json:"-"`
	Staff       *StaffRef `db:"-" json:"staff"`
	OwnerID     int64     `db:"user_id" json:"owner_id"`
}
