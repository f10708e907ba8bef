package models

// Room is a dormitory room.
type Room struct {
	ID      int64  `db:"id" json:"id"`
	Number  string `db:"number" json:"number"`
	OwnerID int64  `db:"user_id" json:"owner_id"`
}

// RoomRef is the room projection embedded in students and repair requests.
type RoomRef struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
}
