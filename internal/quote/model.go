package quote

import "time"

type Quote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type QuoteInput struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}
