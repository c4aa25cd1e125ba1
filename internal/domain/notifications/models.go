package notifications

import "time"

type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type CreateInput struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Type   string `json:"type" validate:"required,max=50"`
	Title  string `json:"title" validate:"required,max=200,singleline"`
	Body   string `json:"body" validate:"max=2000"`
}

type Message struct {
	ID         int64      `json:"id"`
	FromUserID int64      `json:"fromUserId"`
	ToUserID   int64      `json:"toUserId"`
	Content    string     `json:"content"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type MessageInput struct {
	ToUserID int64  `json:"toUserId" validate:"required,gt=0"`
	Content  string `json:"content" validate:"required,max=2000"`
}

// Recipient is the addressable part of a user.
type Recipient struct {
	UserID   int64
	Username string
	Email    string
}
