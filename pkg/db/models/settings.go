package models

import "time"

// Settings represents a settings record.
type Settings struct {
	ID        int64     `db:"id"`
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
