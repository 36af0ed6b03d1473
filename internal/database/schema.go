package database

// schema.go creates the catalog tables on startup and seeds the minimum data
// the application needs to be usable: one admin account and the default
// category set.  Statements are idempotent so restarting the service against
// an existing database is safe.

import (
	"context"
	"database/sql"
	"log"

	"golang.org/x/crypto/bcrypt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username      VARCHAR(50)  NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		email         VARCHAR(100) NOT NULL DEFAULT '',
		role          VARCHAR(20)  NOT NULL DEFAULT 'user',
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS movies (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title        VARCHAR(200) NOT NULL,
		director     VARCHAR(100) NOT NULL DEFAULT '',
		year         INT          NOT NULL DEFAULT 0,
		genre        VARCHAR(100) NOT NULL DEFAULT '',
		description  TEXT,
		image_url    VARCHAR(500) NOT NULL DEFAULT '',
		video_url    VARCHAR(500) NULL,
		video_type   VARCHAR(20)  NOT NULL DEFAULT 'external',
		rating       DOUBLE       NOT NULL DEFAULT 0,
		rating_count INT UNSIGNED NOT NULL DEFAULT 0,
		created_at   DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS categories (
		id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(50) NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_categories_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS movie_categories (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		movie_id    BIGINT UNSIGNED NOT NULL,
		category_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_movie_category (movie_id, category_id),
		CONSTRAINT fk_mc_movie    FOREIGN KEY (movie_id)    REFERENCES movies (id),
		CONSTRAINT fk_mc_category FOREIGN KEY (category_id) REFERENCES categories (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// One rating per (user, movie); writes go through INSERT ... ON DUPLICATE
	// KEY UPDATE so re-rating replaces the previous opinion.
	`CREATE TABLE IF NOT EXISTS ratings (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		movie_id   BIGINT UNSIGNED NOT NULL,
		score      TINYINT UNSIGNED NOT NULL CHECK (score BETWEEN 1 AND 5),
		review     TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_ratings_user_movie (user_id, movie_id),
		KEY idx_ratings_movie (movie_id),
		CONSTRAINT fk_ratings_user  FOREIGN KEY (user_id)  REFERENCES users (id),
		CONSTRAINT fk_ratings_movie FOREIGN KEY (movie_id) REFERENCES movies (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// defaultCategories seeds the category table the first time the service runs.
var defaultCategories = []string{
	"Action", "Comedy", "Romance", "Sci-Fi",
	"Horror", "Drama", "Animation", "Documentary",
}

// EnsureSchema creates all tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Seed inserts the default categories and the admin account when the
// corresponding tables are empty.  adminPass is the plain-text password to
// hash; when it is empty the admin seed is skipped so production deployments
// are never given a default credential.
func Seed(ctx context.Context, db *sql.DB, adminUser, adminPass, adminEmail string, bcryptCost int) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		for _, name := range defaultCategories {
			if _, err := db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name); err != nil {
				return err
			}
		}
		log.Printf("seeded %d default categories", len(defaultCategories))
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return err
	}
	if n == 0 && adminPass != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcryptCost)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO users (username, password_hash, email, role) VALUES (?,?,?,'admin')`,
			adminUser, string(hash), adminEmail); err != nil {
			return err
		}
		log.Printf("seeded admin account %q", adminUser)
	}
	return nil
}
