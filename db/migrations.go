package db

import (
	"fmt"
	"log"
	"time"
)

// Migration representa una migración puntual del esquema
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Todas las migraciones disponibles en orden de versión
var migrations = []Migration{
	{
		Version:     1,
		Description: "Esquema inicial",
		SQL:         "", // aplicado por InitTables(), acá solo queda registrado
	},
	{
		Version:     2,
		Description: "Índices de recordatorios",
		SQL: `
		CREATE INDEX idx_reminders_chat_status ON reminders(chat_id, status);
		CREATE INDEX idx_reminders_due_at ON reminders(due_at);
		`,
	},
	{
		Version:     3,
		Description: "Índice de bitácora por chat",
		SQL: `
		CREATE INDEX idx_vault_chat ON vault_entries(chat_id, created_at);
		`,
	},
}

// ApplyMigrations aplica todas las migraciones pendientes
func (m *MySQLManager) ApplyMigrations() error {
	log.Println("🔄 Controlando migraciones del database...")

	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("error al crear la tabla de migraciones: %v", err)
	}

	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return fmt.Errorf("error al leer la versión actual: %v", err)
	}

	log.Printf("📊 Versión actual del database: %d", currentVersion)

	applied := 0
	for _, migration := range migrations {
		if migration.Version > currentVersion {
			log.Printf("🔄 Aplicando migración %d: %s", migration.Version, migration.Description)

			if err := m.applyMigration(migration); err != nil {
				return fmt.Errorf("error en la migración %d: %v", migration.Version, err)
			}

			applied++
			log.Printf("✅ Migración %d aplicada", migration.Version)
		}
	}

	if applied == 0 {
		log.Println("✅ Database al día, ninguna migración necesaria")
	} else {
		log.Printf("🎉 Aplicadas %d migraciones", applied)
	}

	return nil
}

func (m *MySQLManager) createMigrationsTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (m *MySQLManager) getCurrentVersion() (int, error) {
	var version int
	err := m.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// applyMigration aplica una migración dentro de una transacción
func (m *MySQLManager) applyMigration(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if migration.SQL != "" {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("error al ejecutar el SQL: %v", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO schema_migrations (version, description, applied_at)
		VALUES (?, ?, ?)
	`, migration.Version, migration.Description, time.Now())
	if err != nil {
		return fmt.Errorf("error al registrar la migración: %v", err)
	}

	return tx.Commit()
}
