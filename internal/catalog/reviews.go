package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/auth"
	"github.com/01moynul/cinestream-golang/internal/models"
)

func (s *Service) Reviews(ctx context.Context, movieID int64) ([]models.Review, error) {
	if err := s.movieExists(ctx, s.db, movieID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.user_id, u.username, r.movie_id, r.media_id, r.rating, r.comment, r.created_at
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.movie_id = ?
		ORDER BY r.created_at DESC, r.id DESC`, movieID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.MovieID, &r.MediaID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// CreateReview stores a 1..5 rating for a movie, optionally pinned to one of its episodes.
func (s *Service) CreateReview(ctx context.Context, userID, movieID int64, in models.CreateReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}
	if err := s.movieExists(ctx, s.db, movieID); err != nil {
		return nil, err
	}
	if in.MediaID != nil {
		md, err := s.GetMedia(ctx, *in.MediaID)
		if err != nil {
			return nil, err
		}
		if md.MovieID != movieID {
			return nil, apperr.Validation("media does not belong to this movie")
		}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO reviews (user_id, movie_id, media_id, rating, comment) VALUES (?, ?, ?, ?, ?)",
		userID, movieID, in.MediaID, in.Rating, in.Comment)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("review id: %w", err)
	}

	s.Invalidate(ctx)
	return &models.Review{
		ID:      id,
		UserID:  userID,
		MovieID: &movieID,
		MediaID: in.MediaID,
		Rating:  in.Rating,
		Comment: in.Comment,
	}, nil
}

// DeleteReview removes a review. Authors may delete their own; moderators may delete any.
func (s *Service) DeleteReview(ctx context.Context, reviewID, userID int64, role auth.Role) error {
	var authorID int64
	err := s.db.QueryRowContext(ctx, "SELECT user_id FROM reviews WHERE id = ?", reviewID).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Review not found")
	}
	if err != nil {
		return fmt.Errorf("query review: %w", err)
	}

	if authorID != userID && !role.CanModerate() {
		return apperr.Forbidden("You can only delete your own reviews")
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	s.Invalidate(ctx)
	return nil
}
