package models

import "time"

type Movie struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	ReleaseYear *int      `json:"release_year" db:"release_year"`
	Duration    *int      `json:"duration" db:"duration"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	Poster      *string   `json:"poster" db:"poster"`
	TmdbID      *string   `json:"tmdb_id,omitempty" db:"tmdb_id"`
	ImdbID      *string   `json:"imdb_id,omitempty" db:"imdb_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Virtual fields, filled in by the catalog on read.
	Slug   string   `json:"slug" db:"-"`
	Rating float64  `json:"rating" db:"-"`
	Views  int64    `json:"views" db:"-"`
	Genres []string `json:"genres" db:"-"`
	Media  []Media  `json:"media" db:"-"`
}

type Media struct {
	ID          int64   `json:"id" db:"id"`
	MovieID     int64   `json:"movie_id" db:"movie_id"`
	Season      *int    `json:"season" db:"season"`
	Episode     *int    `json:"episode" db:"episode"`
	Description *string `json:"description" db:"description"`
	FilePath    string  `json:"file_path" db:"file_path"`
	Status      string  `json:"status" db:"status"`
}

type WatchHistory struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	MediaID      int64     `json:"media_id" db:"media_id"`
	MovieID      int64     `json:"movie_id" db:"-"`
	Title        string    `json:"title" db:"-"`
	LastPosition int       `json:"last_position" db:"last_position"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Review struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Username  string    `json:"username,omitempty" db:"-"`
	MovieID   *int64    `json:"movie_id" db:"movie_id"`
	MediaID   *int64    `json:"media_id" db:"media_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// --- API Input Structs ---

type CreateMovieInput struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description"`
	ReleaseYear *int     `json:"release_year"`
	Duration    *int     `json:"duration"`
	IsAvailable *bool    `json:"is_available"`
	TmdbID      *string  `json:"tmdb_id"`
	ImdbID      *string  `json:"imdb_id"`
	Genres      []string `json:"genres"`
}

type SetGenresInput struct {
	Genres []string `json:"genres"`
}

type CreateReviewInput struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment"`
	MediaID *int64  `json:"media_id"`
}

type ProgressInput struct {
	Position *int `json:"position" binding:"required,min=0"`
}
