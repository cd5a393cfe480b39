package models

import "time"

// Embedding is an indexed document and its vector, stored as a JSON array.
type Embedding struct {
	ID        int64     `db:"id"`
	Kind      string    `db:"kind"`
	RefID     int64     `db:"ref_id"`
	Content   string    `db:"content"`
	Vector    string    `db:"vector"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
