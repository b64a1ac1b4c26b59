package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLManager struct {
	db *sql.DB
}

// Crea una nueva instancia del gestor MySQL
func NewMySQLManager(dsn string) (*MySQLManager, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Verifica la conexión
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Parámetros del pool de conexiones
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &MySQLManager{db: db}, nil
}

// Inicializa las tablas necesarias
func (m *MySQLManager) InitTables() error {
	// Tabla de recordatorios
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			chat_id VARCHAR(255) NOT NULL,
			text TEXT NOT NULL,
			due_at DATETIME NOT NULL,
			category VARCHAR(50) NOT NULL DEFAULT 'general',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			is_important BOOLEAN NOT NULL DEFAULT FALSE,
			repeat_interval INT NOT NULL DEFAULT 0,
			last_notified_at DATETIME NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("error al crear la tabla reminders: %v", err)
	}

	// Tabla de la bitácora
	_, err = m.db.Exec(`
		CREATE TABLE IF NOT EXISTS vault_entries (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			chat_id VARCHAR(255) NOT NULL,
			text TEXT NOT NULL,
			category VARCHAR(50) NOT NULL DEFAULT 'general',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("error al crear la tabla vault_entries: %v", err)
	}

	// Tabla de usuarios conocidos
	_, err = m.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			chat_id VARCHAR(255) PRIMARY KEY,
			push_name VARCHAR(255),
			language_code VARCHAR(10) DEFAULT 'es',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("error al crear la tabla users: %v", err)
	}

	return nil
}

// Cierra la conexión al database
func (m *MySQLManager) Close() error {
	return m.db.Close()
}

// scanNullTime convierte un NULL de la base en puntero nil
func scanNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
