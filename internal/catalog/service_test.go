package catalog

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/auth"
	"github.com/01moynul/cinestream-golang/internal/models"
)

type memCache struct {
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	m.data[key] = b
	return err
}

func (m *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	m.data = map[string][]byte{}
	return nil
}

var movieCols = []string{"id", "title", "description", "release_year", "duration", "is_available", "poster",
	"tmdb_id", "imdb_id", "created_at", "rating", "views"}

func q(s string) string { return regexp.QuoteMeta(s) }

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *memCache) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	c := newMemCache()
	return NewService(db, c), mock, c
}

func TestFeaturedQueriesScoresAndCaches(t *testing.T) {
	s, mock, c := newTestService(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("ORDER BY scored.views * 0.7 + scored.rating * 30 DESC")).
		WithArgs(featuredLimit).
		WillReturnRows(sqlmock.NewRows(movieCols).
			AddRow(2, "The Grand Budapest Hotel", nil, 2014, 99, true, nil, nil, nil, created, 4.5, 10).
			AddRow(1, "Heat", nil, 1995, 170, true, nil, nil, nil, created, 0, 3))
	mock.ExpectQuery(q("FROM movie_genres mg JOIN genres g")).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"movie_id", "name"}).
			AddRow(2, "Comedy").
			AddRow(1, "Crime").
			AddRow(2, "Drama"))
	mock.ExpectQuery(q("FROM media WHERE movie_id IN (?, ?)")).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "season", "episode", "description", "file_path", "status"}).
			AddRow(5, 1, nil, nil, nil, "heat.mp4", "READY"))

	movies, err := s.Featured(context.Background())

	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "the-grand-budapest-hotel", movies[0].Slug)
	assert.Equal(t, []string{"Comedy", "Drama"}, movies[0].Genres)
	assert.Empty(t, movies[0].Media)
	assert.Equal(t, 0.0, movies[1].Rating)
	require.Len(t, movies[1].Media, 1)
	assert.Equal(t, "heat.mp4", movies[1].Media[0].FilePath)
	assert.Contains(t, c.data, featuredKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeaturedServedFromCache(t *testing.T) {
	s, mock, c := newTestService(t)
	require.NoError(t, c.SetJSON(context.Background(), featuredKey, []models.Movie{{ID: 9, Title: "Alien", Slug: "alien"}}, time.Minute))

	movies, err := s.Featured(context.Background())

	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "alien", movies[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDMissing(t *testing.T) {
	s, mock, _ := newTestService(t)

	mock.ExpectQuery(q("WHERE m.id = ?")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(movieCols))

	_, err := s.GetByID(context.Background(), 404)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListClampsPaging(t *testing.T) {
	s, mock, _ := newTestService(t)

	mock.ExpectQuery(q("SELECT COUNT(*) FROM movies m WHERE m.title LIKE ?")).
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(q("LIMIT ? OFFSET ?")).
		WithArgs(`%100\%%`, maxLimit, 0).
		WillReturnRows(sqlmock.NewRows(movieCols))

	list, err := s.List(context.Background(), ListParams{Page: -1, Limit: 5000, Search: "100%"})

	require.NoError(t, err)
	assert.Equal(t, int64(0), list.Count)
	assert.NotNil(t, list.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReviewRules(t *testing.T) {
	tests := []struct {
		name    string
		userID  int64
		role    auth.Role
		allowed bool
	}{
		{"author", 7, auth.RoleUser, true},
		{"stranger", 8, auth.RoleUser, false},
		{"moderator", 8, auth.RoleMod, true},
		{"admin", 8, auth.RoleAdmin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock, c := newTestService(t)
			mock.ExpectQuery(q("SELECT user_id FROM reviews WHERE id = ?")).
				WithArgs(int64(1)).
				WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
			if tt.allowed {
				mock.ExpectExec(q("DELETE FROM reviews WHERE id = ?")).
					WithArgs(int64(1)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := s.DeleteReview(context.Background(), 1, tt.userID, tt.role)

			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, []string{"catalog:*"}, c.deleted)
			} else {
				assert.ErrorIs(t, err, apperr.ErrForbidden)
				assert.Empty(t, c.deleted)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateReviewRejectsOutOfRangeRating(t *testing.T) {
	s, mock, _ := newTestService(t)

	_, err := s.CreateReview(context.Background(), 7, 1, models.CreateReviewInput{Rating: 6})

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUniqueNames(t *testing.T) {
	assert.Equal(t, []string{"Drama", "Sci-Fi"}, uniqueNames([]string{" Drama", "", "drama", "Sci-Fi", "SCI-FI "}))
	assert.Equal(t, "?, ?, ?", placeholders(3))
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
}
