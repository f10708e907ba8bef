package models

// Staff is a dormitory employee.
type Staff struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Post    string `db:"post" json:"post"`
	OwnerID int64  `db:"user_id" json:"owner_id"`
}

// StaffRef is the staff projection embedded in repair requests.
type StaffRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Post string `json:"post"`
}
