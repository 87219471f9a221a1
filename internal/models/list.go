package models

import "time"

type List struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Task struct {
	ID             string
	ListID         string
	Title          string
	Completed      bool
	AttachmentKey  *string
	AttachmentName *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
