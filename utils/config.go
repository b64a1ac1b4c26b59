package utils

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
)

// Configuración del database
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
}

// Configuración del server HTTP
type ServerConfig struct {
	Port int `json:"port"`
}

// Configuración de WhatsApp
type WhatsAppConfig struct {
	SessionPath string `json:"session_path"`
}

// Configuración de OpenAI (transcripción de voz)
type OpenAIConfig struct {
	APIKey string `json:"api_key"`
}

// Configuración completa
type Config struct {
	Database   DatabaseConfig `json:"database"`
	Server     ServerConfig   `json:"server"`
	WhatsApp   WhatsAppConfig `json:"whatsapp"`
	OpenAI     OpenAIConfig   `json:"openai"`
	ExportsDir string         `json:"exports_dir"`
}

// Carga la configuración desde el archivo
func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error al abrir el archivo de configuración: %v", err)
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("error al decodificar el archivo de configuración: %v", err)
	}

	if config.WhatsApp.SessionPath == "" {
		config.WhatsApp.SessionPath = "session.db"
	}
	if config.ExportsDir == "" {
		config.ExportsDir = "exports"
	}
	// La API key puede venir del entorno
	if config.OpenAI.APIKey == "" {
		config.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return &config, nil
}

// Devuelve el DSN de conexión al database.
// Las fechas se leen y escriben siempre en la zona horaria de referencia.
func (c *DatabaseConfig) GetDSN(timezone string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true&loc=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, url.QueryEscape(timezone))
}
