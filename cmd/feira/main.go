package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rfduarte/feira/internal/backup"
	"github.com/rfduarte/feira/internal/database"
	"github.com/rfduarte/feira/internal/logging"
	"github.com/rfduarte/feira/internal/server"
)

func main() {
	port := os.Getenv("FEIRA_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("FEIRA_DB_PATH")
	if dbPath == "" {
		dbPath = "feira.db"
	}

	logger := logging.Setup(os.Getenv("FEIRA_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("FEIRA_S3_ENDPOINT"),
			Bucket:    os.Getenv("FEIRA_S3_BUCKET"),
			Region:    os.Getenv("FEIRA_S3_REGION"),
			AccessKey: os.Getenv("FEIRA_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("FEIRA_S3_SECRET_KEY"),
		},
		DBPath:     dbPath,
		Passphrase: os.Getenv("FEIRA_BACKUP_PASSPHRASE"),
	}
	backupCfg.ScheduleHour, _ = strconv.Atoi(os.Getenv("FEIRA_BACKUP_HOUR"))
	backupCfg.RetentionDays, _ = strconv.Atoi(os.Getenv("FEIRA_BACKUP_RETENTION_DAYS"))

	srv := server.New(db, backupCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.BackupManager().Start(ctx)

	// Expired sessions and stale rate-limit buckets accumulate slowly;
	// sweep them hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Feira running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	cancel()
	srv.BackupManager().Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
