package models

// Student is a dormitory resident.
type Student struct {
	ID      int64    `db:"id" json:"id"`
	Name    string   `db:"name" json:"name"`
	Group   string   `db:"group_name" json:"group"`
	RoomID  *int64   `db:"room_id" json:"-"`
	Room    *RoomRef `db:"-" json:"room"`
	OwnerID int64    `db:"user_id" json:"owner_id"`
}

// StudentRef is the student projection embedded in duty schedules.
type StudentRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// StudentExportRow is one line of the student roster export.
type StudentExportRow struct {
	ID         int64   `db:"id"`
	Name       string  `db:"name"`
	Group      string  `db:"group_name"`
	RoomNumber *string `db:"room_number"`
}
