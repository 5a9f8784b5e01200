package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaDDL creates every table the booking core touches.  Statements
// are idempotent so the worker can run them on every start.  The seats
// table is an initialization aid only; the write path derives seats
// from studio capacity and never reads it.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS studios (
		id       VARCHAR(64)  NOT NULL,
		name     VARCHAR(255) NOT NULL,
		capacity INT          NOT NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS films (
		id    VARCHAR(64)  NOT NULL,
		title VARCHAR(255) NOT NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS showtimes (
		id        VARCHAR(64) NOT NULL,
		film_id   VARCHAR(64) NOT NULL,
		studio_id VARCHAR(64) NOT NULL,
		starts_at DATETIME    NOT NULL,
		price     BIGINT      NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		KEY idx_showtimes_studio (studio_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id                VARCHAR(64)  NOT NULL,
		user_id           VARCHAR(64)  NOT NULL,
		showtime_id       VARCHAR(64)  NOT NULL,
		status            VARCHAR(16)  NOT NULL,
		payment_proof_url TEXT         NULL,
		total_price       BIGINT       NOT NULL DEFAULT 0,
		created_at        DATETIME     NOT NULL,
		PRIMARY KEY (id),
		KEY idx_bookings_user (user_id),
		KEY idx_bookings_status_created (status, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS booking_seats (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		booking_id VARCHAR(64)     NOT NULL,
		seat_id    VARCHAR(64)     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_booking_seat (booking_id, seat_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS seat_statuses (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		seat_id     VARCHAR(64)     NOT NULL,
		showtime_id VARCHAR(64)     NOT NULL,
		status      VARCHAR(16)     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_seat_showtime (seat_id, showtime_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS seats (
		id          VARCHAR(64) NOT NULL,
		studio_id   VARCHAR(64) NOT NULL,
		seat_number VARCHAR(8)  NOT NULL,
		PRIMARY KEY (id),
		KEY idx_seats_studio (studio_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema applies the DDL above.  It is safe to call repeatedly.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
