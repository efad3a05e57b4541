package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/quickcart/quickcart-golang/internal/assistant"
	"github.com/quickcart/quickcart-golang/internal/database"
	"github.com/quickcart/quickcart-golang/internal/handlers"
	"github.com/quickcart/quickcart-golang/internal/routes"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Main Database Connection (Read/Write) ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to primary database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to create database schema: %v", err)
	}

	// 2. --- Seed the Back-Office Admin (opt-in) ---
	if os.Getenv("SEED_ADMIN") == "true" {
		if err := database.SeedAdmin(db); err != nil {
			log.Fatalf("Failed to seed admin account: %v", err)
		}
	}

	// 3. --- Assistant (optional, needs its own read-only pool) ---
	// The server runs fine without it; the endpoint just reports
	// itself unconfigured.
	var catalogAssistant *assistant.Assistant

	geminiKey := os.Getenv("GEMINI_API_KEY")
	readOnlyDSN := os.Getenv("DB_DSN_READONLY")
	if geminiKey != "" && readOnlyDSN != "" {
		dbReadOnly, err := database.OpenDBWithDSN(readOnlyDSN)
		if err != nil {
			log.Fatalf("Failed to connect to assistant read-only database: %v", err)
		}
		defer dbReadOnly.Close()

		catalogAssistant, err = assistant.New(geminiKey, dbReadOnly)
		if err != nil {
			log.Fatalf("Failed to initialize assistant: %v", err)
		}
	} else {
		log.Println("GEMINI_API_KEY or DB_DSN_READONLY not set; assistant disabled.")
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:        db,
		Assistant: catalogAssistant,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("Starting QuickCart API server on %s...", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
