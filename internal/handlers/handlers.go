package handlers

import (
	"database/sql"

	"github.com/quickcart/quickcart-golang/internal/assistant"
)

// Handlers struct holds all dependencies for our handlers.
// The assistant carries its own read-only connection pool, so the
// handlers only ever see the primary one.
type Handlers struct {
	DB        *sql.DB              // Primary Read/Write connection
	Assistant *assistant.Assistant // Catalog Q&A service (admin only)
}
