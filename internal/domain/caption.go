package domain

import "time"

// Caption represents a saved, user-approved caption. Captions are
// immutable once created; there is no update operation.
type Caption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Goal      string    `gorm:"type:text;not null" json:"goal"`
	Caption   string    `gorm:"type:text;not null" json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Caption.
func (Caption) TableName() string {
	return "captions"
}

// ChatMessage is a single validated turn of a caption-editing dialogue.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
