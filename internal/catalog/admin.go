package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/01moynul/cinestream-golang/internal/database"
	"github.com/01moynul/cinestream-golang/internal/models"
)

// CreateMovie inserts a movie and links its genres, creating missing genre names on the way.
func (s *Service) CreateMovie(ctx context.Context, in models.CreateMovieInput) (*models.Movie, error) {
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}

	var movieID int64
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO movies (title, description, release_year, duration, is_available, tmdb_id, imdb_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.Title, in.Description, in.ReleaseYear, in.Duration, available, in.TmdbID, in.ImdbID)
		if err != nil {
			return fmt.Errorf("insert movie: %w", err)
		}
		if movieID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("movie id: %w", err)
		}
		return linkGenres(ctx, tx, movieID, in.Genres)
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx)
	return s.GetByID(ctx, movieID)
}

// SetGenres replaces a movie's genre list.
func (s *Service) SetGenres(ctx context.Context, movieID int64, names []string) (*models.Movie, error) {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.movieExists(ctx, tx, movieID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM movie_genres WHERE movie_id = ?", movieID); err != nil {
			return fmt.Errorf("clear genres: %w", err)
		}
		return linkGenres(ctx, tx, movieID, names)
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx)
	return s.GetByID(ctx, movieID)
}

// SetPoster stores the public URL of an uploaded poster.
func (s *Service) SetPoster(ctx context.Context, movieID int64, url string) error {
	if err := s.movieExists(ctx, s.db, movieID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE movies SET poster = ? WHERE id = ?", url, movieID); err != nil {
		return fmt.Errorf("update poster: %w", err)
	}
	s.Invalidate(ctx)
	return nil
}

func linkGenres(ctx context.Context, tx *sql.Tx, movieID int64, names []string) error {
	for _, name := range uniqueNames(names) {
		if _, err := tx.ExecContext(ctx, "INSERT IGNORE INTO genres (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("ensure genre %q: %w", name, err)
		}
		var genreID int64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM genres WHERE name = ?", name).Scan(&genreID); err != nil {
			return fmt.Errorf("lookup genre %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)", movieID, genreID); err != nil {
			return fmt.Errorf("link genre %q: %w", name, err)
		}
	}
	return nil
}

// uniqueNames trims names and drops blanks and case-insensitive duplicates, keeping first spelling.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
