package catalog

import (
	"context"
	"fmt"

	"github.com/01moynul/cinestream-golang/internal/models"
)

// UpdateProgress records how far (in seconds) a user got into a media file.
func (s *Service) UpdateProgress(ctx context.Context, userID, mediaID int64, position int) error {
	if _, err := s.GetMedia(ctx, mediaID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watch_history (user_id, media_id, last_position)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE last_position = VALUES(last_position)`,
		userID, mediaID, position)
	if err != nil {
		return fmt.Errorf("upsert watch history: %w", err)
	}
	return nil
}

// History returns the user's watch history, most recent first.
func (s *Service) History(ctx context.Context, userID int64) ([]models.WatchHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wh.user_id, wh.media_id, md.movie_id, m.title, wh.last_position, wh.updated_at
		FROM watch_history wh
		JOIN media md ON md.id = wh.media_id
		JOIN movies m ON m.id = md.movie_id
		WHERE wh.user_id = ?
		ORDER BY wh.updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	history := []models.WatchHistory{}
	for rows.Next() {
		var w models.WatchHistory
		if err := rows.Scan(&w.UserID, &w.MediaID, &w.MovieID, &w.Title, &w.LastPosition, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan watch history: %w", err)
		}
		history = append(history, w)
	}
	return history, rows.Err()
}
