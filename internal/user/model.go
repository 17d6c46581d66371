package user

import "time"

type User struct {
	ID        string
	AuthID    string
	Nickname  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
