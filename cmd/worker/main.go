package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/andhika-rp/bioskop-booking/internal/booking"
	"github.com/andhika-rp/bioskop-booking/internal/cache"
	"github.com/andhika-rp/bioskop-booking/internal/config"
	"github.com/andhika-rp/bioskop-booking/internal/database"
	"github.com/andhika-rp/bioskop-booking/internal/queue"
	"github.com/andhika-rp/bioskop-booking/internal/repository"
)

// The worker owns the background side of the booking core: it ensures
// the schema, seeds the auxiliary seats table, consumes booking events
// into logs/booking.log and, when a hold TTL is configured, expires
// stale Pending bookings on a fixed cadence.
func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	if n, err := repository.NewSeatRepo(db).EnsureAll(ctx); err != nil {
		log.Printf("seed seats: %v", err)
	} else if n > 0 {
		log.Printf("seeded %d seats", n)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, seat-grid caching disabled")
	}

	pub, err := queue.NewPublisher()
	if err != nil {
		log.Printf("broker unavailable, booking events disabled: %v", err)
		pub = nil
	}

	engine := booking.NewEngine(
		db,
		repository.NewShowtimeRepo(db),
		repository.NewStudioRepo(db),
		repository.NewSeatStatusRepo(db),
		repository.NewBookingRepo(db),
		cache.NewSeatGridCache(rdb, cfg.GridCacheTTL),
		pub,
	)

	if cfg.HoldTTL > 0 {
		go runReaper(ctx, engine, cfg.HoldTTL)
		log.Printf("expiring pending bookings older than %s", cfg.HoldTTL)
	} else {
		log.Printf("BOOKING_HOLD_TTL_MIN unset, booking expiry disabled")
	}

	log.Printf("worker running (env=%s)", cfg.Env)
	if err := queue.StartBookingConsumer(); err != nil {
		log.Fatal(err)
	}
}

// runReaper expires stale Pending bookings once a minute.
func runReaper(ctx context.Context, engine *booking.Engine, ttl time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		n, err := engine.ExpireStale(ctx, ttl)
		if err != nil {
			log.Printf("expire stale bookings: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("expired %d stale bookings", n)
		}
	}
}
