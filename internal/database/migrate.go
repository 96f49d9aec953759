package database

import (
	"context"
	"database/sql"
)

// Schema statements are idempotent so Migrate can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(150) NOT NULL UNIQUE,
		email         VARCHAR(254) NOT NULL UNIQUE,
		first_name    VARCHAR(150) NOT NULL DEFAULT '',
		last_name     VARCHAR(150) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(10) NULL,
		is_staff      TINYINT(1) NOT NULL DEFAULT 0,
		is_superuser  TINYINT(1) NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS token_blacklist (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		jti        CHAR(36) NOT NULL UNIQUE,
		user_id    BIGINT UNSIGNED NOT NULL,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_blacklist_expires (expires_at)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS farm_types (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255) NOT NULL UNIQUE,
		description TEXT NOT NULL
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS crops (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		image       VARCHAR(500) NOT NULL DEFAULT ''
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS farmers (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(255) NOT NULL,
		national_id  VARCHAR(20) NOT NULL UNIQUE,
		location     VARCHAR(255) NOT NULL,
		farm_type_id BIGINT UNSIGNED NOT NULL,
		crop_id      BIGINT UNSIGNED NOT NULL,
		CONSTRAINT fk_farmers_farm_type FOREIGN KEY (farm_type_id) REFERENCES farm_types(id),
		CONSTRAINT fk_farmers_crop FOREIGN KEY (crop_id) REFERENCES crops(id)
	) ENGINE=InnoDB`,
}

// Migrate creates the application tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
