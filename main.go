package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gambler/challenge-service/cmd"
	"gambler/challenge-service/config"
	"gambler/challenge-service/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	cmd.SetupLogging(config.Get())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// One-off expiry sweep
	if len(os.Args) > 1 && os.Args[1] == "expire-now" {
		if err := cmd.ExpireNow(ctx); err != nil {
			log.Fatal("Expiry error: ", err)
		}
		return
	}

	if len(os.Args) > 1 {
		log.Fatalf("unknown command: %s (usage: challenge-service [migrate up|down [n]|status | expire-now])", os.Args[1])
	}

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: challenge-service migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
