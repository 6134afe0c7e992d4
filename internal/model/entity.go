package model

import "time"

// User account. Password holds the argon2id hash, never the plaintext.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Name      string    `gorm:"type:varchar(100)" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

// Room is a drawing room. Slug is the shareable handle clients resolve to
// the numeric id before joining over the websocket.
type Room struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	AdminID   int64     `gorm:"not null;index" json:"adminId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Room) TableName() string {
	return "rooms"
}

// Chat is one entry of a room's append-only mutation log. Message carries
// the raw broadcast body; ShapeID is extracted at insert so a delete by
// shape id is one indexed statement instead of a text scan.
type Chat struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID    int64     `gorm:"not null;index:idx_room_created" json:"roomId"`
	UserID    int64     `gorm:"not null" json:"userId"`
	ShapeID   string    `gorm:"type:varchar(64);index" json:"shapeId,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_room_created" json:"createdAt"`
}

func (Chat) TableName() string {
	return "chats"
}
