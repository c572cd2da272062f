// Package catalog serves movies, media, genres and reviews. Read paths decorate every movie with
// its slug, average rating, genre names, media list and distinct viewer count.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/cache"
	"github.com/01moynul/cinestream-golang/internal/database"
	"github.com/01moynul/cinestream-golang/internal/logger"
	"github.com/01moynul/cinestream-golang/internal/models"
)

const (
	featuredKey   = "catalog:featured"
	featuredTTL   = 5 * time.Minute
	featuredLimit = 10

	defaultLimit = 20
	maxLimit     = 100
)

type Service struct {
	db    *sql.DB
	cache cache.Cache
	log   *logrus.Logger
}

func NewService(db *sql.DB, c cache.Cache) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{db: db, cache: c, log: logger.Get()}
}

type ListParams struct {
	Page   int
	Limit  int
	Genre  string
	Search string
}

func (p *ListParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
}

type MovieList struct {
	Count int64          `json:"count"`
	Rows  []models.Movie `json:"rows"`
}

// movieSelect yields one row per movie with rating (0 when unreviewed) and distinct viewers.
const movieSelect = `
	SELECT m.id, m.title, m.description, m.release_year, m.duration, m.is_available, m.poster,
	       m.tmdb_id, m.imdb_id, m.created_at,
	       COALESCE((SELECT AVG(r.rating) FROM reviews r WHERE r.movie_id = m.id), 0) AS rating,
	       (SELECT COUNT(DISTINCT wh.user_id)
	          FROM watch_history wh JOIN media md ON md.id = wh.media_id
	         WHERE md.movie_id = m.id) AS views
	FROM movies m`

func scanMovie(row interface{ Scan(...any) error }) (models.Movie, error) {
	var m models.Movie
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.ReleaseYear, &m.Duration, &m.IsAvailable, &m.Poster,
		&m.TmdbID, &m.ImdbID, &m.CreatedAt, &m.Rating, &m.Views)
	return m, err
}

func (s *Service) queryMovies(ctx context.Context, query string, args ...any) ([]models.Movie, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// List pages through the catalogue, optionally filtered by genre name and a title search.
func (s *Service) List(ctx context.Context, p ListParams) (*MovieList, error) {
	p.normalize()

	var (
		where []string
		args  []any
	)
	if p.Genre != "" {
		where = append(where, `EXISTS (SELECT 1 FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
			WHERE mg.movie_id = m.id AND g.name = ?)`)
		args = append(args, p.Genre)
	}
	if p.Search != "" {
		where = append(where, "m.title LIKE ?")
		args = append(args, "%"+escapeLike(p.Search)+"%")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies m"+clause, args...).Scan(&count); err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}

	pageArgs := append(append([]any{}, args...), p.Limit, (p.Page-1)*p.Limit)
	movies, err := s.queryMovies(ctx, movieSelect+clause+" ORDER BY m.created_at DESC, m.id DESC LIMIT ? OFFSET ?", pageArgs...)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, movies); err != nil {
		return nil, err
	}
	return &MovieList{Count: count, Rows: movies}, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.Movie, error) {
	m, err := scanMovie(s.db.QueryRowContext(ctx, movieSelect+" WHERE m.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Movie not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query movie: %w", err)
	}

	movies := []models.Movie{m}
	if err := s.decorate(ctx, movies); err != nil {
		return nil, err
	}
	return &movies[0], nil
}

// Featured returns the ten most popular movies, scored views*0.7 + rating*30.
func (s *Service) Featured(ctx context.Context) ([]models.Movie, error) {
	var cached []models.Movie
	hit, err := s.cache.GetJSON(ctx, featuredKey, &cached)
	if err != nil {
		s.log.WithError(err).Warn("featured cache read failed")
	}
	if hit {
		return cached, nil
	}

	query := `SELECT * FROM (` + movieSelect + `) scored
		ORDER BY scored.views * 0.7 + scored.rating * 30 DESC, scored.id
		LIMIT ?`
	movies, err := s.queryMovies(ctx, query, featuredLimit)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, movies); err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, featuredKey, movies, featuredTTL); err != nil {
		s.log.WithError(err).Warn("featured cache write failed")
	}
	return movies, nil
}

// Invalidate drops every cached catalog entry. Called after admin writes.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, "catalog:*"); err != nil {
		s.log.WithError(err).Warn("catalog cache invalidation failed")
	}
}

// decorate fills Slug, Genres and Media for a page of movies using two batched queries.
func (s *Service) decorate(ctx context.Context, movies []models.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	index := make(map[int64]int, len(movies))
	ids := make([]any, len(movies))
	for i := range movies {
		movies[i].Slug = slug.Make(movies[i].Title)
		movies[i].Genres = []string{}
		movies[i].Media = []models.Media{}
		index[movies[i].ID] = i
		ids[i] = movies[i].ID
	}
	in := placeholders(len(ids))

	// 1. Genres
	rows, err := s.db.QueryContext(ctx, `
		SELECT mg.movie_id, g.name
		FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id IN (`+in+`)
		ORDER BY g.name`, ids...)
	if err != nil {
		return fmt.Errorf("query genres: %w", err)
	}
	for rows.Next() {
		var movieID int64
		var name string
		if err := rows.Scan(&movieID, &name); err != nil {
			rows.Close()
			return fmt.Errorf("scan genre: %w", err)
		}
		if i, ok := index[movieID]; ok {
			movies[i].Genres = append(movies[i].Genres, name)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// 2. Media
	media, err := s.queryMedia(ctx, `WHERE movie_id IN (`+in+`)`, ids...)
	if err != nil {
		return err
	}
	for _, md := range media {
		if i, ok := index[md.MovieID]; ok {
			movies[i].Media = append(movies[i].Media, md)
		}
	}
	return nil
}

func (s *Service) queryMedia(ctx context.Context, where string, args ...any) ([]models.Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, movie_id, season, episode, description, file_path, status
		FROM media `+where+`
		ORDER BY season, episode, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query media: %w", err)
	}
	defer rows.Close()

	list := []models.Media{}
	for rows.Next() {
		var md models.Media
		if err := rows.Scan(&md.ID, &md.MovieID, &md.Season, &md.Episode, &md.Description, &md.FilePath, &md.Status); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		list = append(list, md)
	}
	return list, rows.Err()
}

// MediaForMovie lists a movie's episodes. Unknown movies are NotFound.
func (s *Service) MediaForMovie(ctx context.Context, movieID int64) ([]models.Media, error) {
	if err := s.movieExists(ctx, s.db, movieID); err != nil {
		return nil, err
	}
	return s.queryMedia(ctx, "WHERE movie_id = ?", movieID)
}

func (s *Service) GetMedia(ctx context.Context, id int64) (*models.Media, error) {
	list, err := s.queryMedia(ctx, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperr.NotFound("Media not found")
	}
	return &list[0], nil
}

func (s *Service) Genres(ctx context.Context) ([]models.Genre, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM genres ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	genres := []models.Genre{}
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (s *Service) movieExists(ctx context.Context, q database.Querier, id int64) error {
	var found int64
	err := q.QueryRowContext(ctx, "SELECT id FROM movies WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Movie not found")
	}
	if err != nil {
		return fmt.Errorf("query movie: %w", err)
	}
	return nil
}

// placeholders returns "?, ?, ?" for n bound values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
