package main

import (
	"context"
	"log"

	"agora/internal/app/bootstrap"

	"github.com/joho/godotenv"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Run the outbox relays on the poll interval.
func main() {
	_ = godotenv.Load()

	log.Println("agora worker starting")
	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("agora worker stopped with error: %v", err)
	}
}
