/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the gratuity payout server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Wire the settlement runner and nightly scheduler
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port        HTTP server port (default: 8080, env PORT)
  -db          SQLite database path (default: payouts.db, env DATABASE_PATH)
               Use ":memory:" for in-memory database
  -restaurant  Restaurant the nightly scheduler settles (env RESTAURANT_ID)
  -cron        Cron expression for the nightly settlement (default: 0 3 * * *)
  -seed        Load demo data on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the settlement scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database and demo data
  ./server -db="./data/payouts.db" -seed

  # Run with in-memory database
  ./server -db=":memory:" -seed

SEE ALSO:
  - api/server.go: Router configuration
  - settlement/scheduler.go: Nightly settlement job
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tably/gratuity-engine/api"
	"github.com/tably/gratuity-engine/payout"
	"github.com/tably/gratuity-engine/settlement"
	"github.com/tably/gratuity-engine/store/sqlite"
)

func main() {
	// .env is optional; flags and real env vars win.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "payouts.db"), "SQLite database path")
	restaurant := flag.String("restaurant", envStr("RESTAURANT_ID", "tably-demo"), "restaurant settled by the nightly job")
	cronSpec := flag.String("cron", envStr("SETTLEMENT_CRON", "0 3 * * *"), "cron expression for nightly settlement")
	seed := flag.Bool("seed", false, "load demo data on startup")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	restaurantID := payout.RestaurantID(*restaurant)
	if *seed {
		if err := api.SeedDemo(context.Background(), store, restaurantID); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
		log.Info().Str("restaurant", *restaurant).Msg("demo data loaded")
	}

	runner := settlement.NewRunner(store, store, store, store, log)
	scheduler := settlement.NewScheduler(runner, log, restaurantID)
	if err := scheduler.Start(*cronSpec); err != nil {
		log.Fatal().Err(err).Str("cron", *cronSpec).Msg("invalid settlement cron expression")
	}
	defer scheduler.Stop()

	handler := api.NewHandler(store, runner, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", *port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
