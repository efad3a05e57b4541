package database

import (
	"database/sql"
	"log"
	"os"

	"github.com/quickcart/quickcart-golang/internal/models"
)

// schemaStatements creates the four tables the storefront needs.
// IF NOT EXISTS keeps startup idempotent; real migrations can replace
// this once the schema starts changing in production.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role ENUM('customer', 'admin') NOT NULL DEFAULT 'customer',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		price DECIMAL(12,2) NOT NULL,
		category VARCHAR(100) NOT NULL DEFAULT '',
		image VARCHAR(512) NOT NULL DEFAULT '',
		stock_quantity INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'Pending',
		items_price DOUBLE NOT NULL,
		tax_price DOUBLE NOT NULL,
		shipping_price DOUBLE NOT NULL,
		total_price DOUBLE NOT NULL,
		ship_full_name VARCHAR(255) NOT NULL,
		ship_address VARCHAR(512) NOT NULL,
		ship_city VARCHAR(100) NOT NULL DEFAULT '',
		ship_postal_code VARCHAR(30) NOT NULL DEFAULT '',
		ship_country VARCHAR(100) NOT NULL DEFAULT '',
		ship_phone VARCHAR(50) NOT NULL,
		idempotency_key CHAR(36) NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_orders_idempotency_key (idempotency_key),
		CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		price DOUBLE NOT NULL,
		quantity INT NOT NULL,
		image VARCHAR(512) NOT NULL DEFAULT '',
		CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders (id)
	)`,
}

// EnsureSchema creates any missing tables on startup.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the back-office admin account if it does not exist
// yet. Email and password come from ADMIN_EMAIL / ADMIN_PASSWORD, with
// the same defaults the seed script always used.
func SeedAdmin(db *sql.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@shop.com"
	}
	plaintext := os.Getenv("ADMIN_PASSWORD")
	if plaintext == "" {
		plaintext = "Admin@123"
	}

	var existingID int64
	err := db.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&existingID)
	if err == nil {
		log.Println("Admin already exists, skipping seed")
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	var password models.Password
	if err := password.Set(plaintext); err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		VALUES ('Admin', ?, ?, 'admin', NOW(), NOW())`,
		email, password.Hash)
	if err != nil {
		return err
	}

	log.Printf("Admin account seeded -> email: %s", email)
	return nil
}
