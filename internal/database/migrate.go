package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Statements are ordered so that referenced tables exist first.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(64) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role ENUM('USER','MOD','ADMIN') NOT NULL DEFAULT 'USER',
		gender VARCHAR(16) NULL,
		birthdate DATE NULL,
		region VARCHAR(8) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS subscription_plans (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		max_devices INT NOT NULL DEFAULT 1,
		hd BOOLEAN NOT NULL DEFAULT FALSE,
		ultra_hd BOOLEAN NOT NULL DEFAULT FALSE,
		duration_days INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_subscriptions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		plan_id BIGINT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		INDEX idx_user_subscriptions_user (user_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (plan_id) REFERENCES subscription_plans(id)
	)`,
	`CREATE TABLE IF NOT EXISTS billings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_subscription_id BIGINT NOT NULL UNIQUE,
		amount DECIMAL(10,2) NOT NULL,
		payment_method VARCHAR(64) NULL,
		payment_date DATETIME NULL,
		due_date DATETIME NOT NULL,
		payment_status ENUM('PENDING','COMPLETED') NOT NULL DEFAULT 'PENDING',
		FOREIGN KEY (user_subscription_id) REFERENCES user_subscriptions(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NULL,
		release_year INT NULL,
		duration INT NULL,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		poster VARCHAR(512) NULL,
		tmdb_id VARCHAR(32) NULL,
		imdb_id VARCHAR(32) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(64) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id BIGINT NOT NULL,
		genre_id BIGINT NOT NULL,
		PRIMARY KEY (movie_id, genre_id),
		FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE,
		FOREIGN KEY (genre_id) REFERENCES genres(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS media (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		movie_id BIGINT NOT NULL,
		season INT NULL,
		episode INT NULL,
		description TEXT NULL,
		file_path VARCHAR(512) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'READY',
		FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS watch_history (
		user_id BIGINT NOT NULL,
		media_id BIGINT NOT NULL,
		last_position INT NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, media_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (media_id) REFERENCES media(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		movie_id BIGINT NULL,
		media_id BIGINT NULL,
		rating TINYINT NOT NULL,
		comment TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_reviews_movie (movie_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS devices (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		device_type VARCHAR(32) NOT NULL,
		device_name VARCHAR(128) NOT NULL,
		last_login DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_devices_user_device (user_id, device_type, device_name),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
}

// Migrate creates any missing tables. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
