package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the calendar tables.  Statements are idempotent so Migrate
// can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(64) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'USER',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS games (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		season SMALLINT NOT NULL,
		played_at DATETIME NOT NULL,
		opponents VARCHAR(128) NOT NULL,
		competition VARCHAR(16) NOT NULL,
		location VARCHAR(8) NOT NULL,
		result VARCHAR(32) NULL,
		attendance INT NULL,
		match_report VARCHAR(512) NULL,
		television_channel VARCHAR(64) NULL,
		UNIQUE KEY uq_game (competition, location, season, opponents),
		INDEX idx_games_season (season, played_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS game_tickets (
		game_id BIGINT UNSIGNED NOT NULL,
		ticket_type VARCHAR(32) NOT NULL,
		on_sale_at DATETIME NOT NULL,
		PRIMARY KEY (game_id, ticket_type),
		CONSTRAINT fk_tickets_game FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS attendances (
		user_id BIGINT UNSIGNED NOT NULL,
		game_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, game_id),
		CONSTRAINT fk_att_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_att_game FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the calendar schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
