package models

// Genre defines the struct for the 'genres' table
type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
