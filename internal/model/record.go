package model

import "time"

// Record is a committed session in the user's log.
type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	TotalWork  int       `json:"totalWork"`
	TotalBreak int       `json:"totalBreak"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"-"`
}
