package models

import "time"

// Post is a user-owned record pointing at one uploaded text blob.
// The ID is assigned by the database on insert; FileName is the generated
// identifier of the blob in the file store.
type Post struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"file_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
