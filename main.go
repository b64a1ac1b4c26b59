package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"recordatorio-bot/db"
	"recordatorio-bot/export"
	"recordatorio-bot/handlers"
	"recordatorio-bot/models"
	"recordatorio-bot/parser"
	"recordatorio-bot/persistence"
	"recordatorio-bot/scheduler"
	"recordatorio-bot/transcription"
	"recordatorio-bot/utils"
	"recordatorio-bot/whatsapp"
)

func main() {
	// Carga la configuración
	config, err := utils.LoadConfig("config.json")
	if err != nil {
		log.Fatalf("❌ Error al cargar la configuración: %v", err)
	}

	// Conexión al database
	dbManager, err := db.NewMySQLManager(config.Database.GetDSN(parser.TimezoneName))
	if err != nil {
		log.Fatalf("❌ Error al conectar al database: %v", err)
	}
	defer dbManager.Close()

	if err := dbManager.InitTables(); err != nil {
		log.Fatalf("❌ Error al inicializar las tablas: %v", err)
	}

	// Si una migración falla seguimos con el esquema base en vez de caernos
	if err := dbManager.ApplyMigrations(); err != nil {
		log.Printf("⚠️ Error en las migraciones, se sigue con el esquema base: %v", err)
	}

	// Caché de mensajes ya procesados
	persistenceManager, err := persistence.NewPersistenceManager("processed.db")
	if err != nil {
		log.Fatalf("❌ Error al abrir la caché de mensajes: %v", err)
	}
	defer persistenceManager.Close()

	stopSweeper := make(chan struct{})
	persistenceManager.StartSweeper(6*time.Hour, stopSweeper)
	defer close(stopSweeper)

	// Cliente de WhatsApp
	waClient, err := whatsapp.NewClient(config.WhatsApp.SessionPath)
	if err != nil {
		log.Fatalf("❌ Error al crear el cliente de WhatsApp: %v", err)
	}

	// Scheduler de avisos
	sched := scheduler.NewScheduler(waClient, dbManager)
	defer sched.Stop()
	sched.SetOnFired(func(r models.Reminder) {
		handlers.BroadcastToClients("reminder_fired", r)
	})

	// Transcripción de voz (opcional, depende de la API key)
	var transcriber handlers.Transcriber
	if config.OpenAI.APIKey != "" {
		transcriber = transcription.NewTranscriber(config.OpenAI.APIKey)
	} else {
		log.Println("⚠️ Sin API key de OpenAI, los mensajes de voz no se van a transcribir")
	}

	// Exportación de datos
	exporter, err := export.NewExporter(config.ExportsDir)
	if err != nil {
		log.Fatalf("❌ Error al preparar las exportaciones: %v", err)
	}

	// Handler de comandos
	commandHandler := handlers.NewCommandHandler(dbManager, sched, waClient, transcriber, exporter)
	waClient.SetHandler(commandHandler, persistenceManager)

	// Conecta WhatsApp (muestra el QR si no hay sesión)
	if err := waClient.Connect(); err != nil {
		log.Fatalf("❌ Error al conectar con WhatsApp: %v", err)
	}
	defer waClient.Disconnect()

	// Rehidrata los timers con lo que quedó pendiente en la base
	active, err := dbManager.GetAllActiveReminders()
	if err != nil {
		log.Fatalf("❌ Error al leer los recordatorios activos: %v", err)
	}
	scheduled := sched.Rehydrate(active, time.Now().In(parser.Location))
	if important, err := dbManager.GetActiveImportantReminders(); err == nil {
		log.Printf("⏰ %d timers rehidratados (%d importantes activos)", scheduled, len(important))
	} else {
		log.Printf("⏰ %d timers rehidratados", scheduled)
	}

	// API REST + WebSocket
	router := gin.Default()
	handlers.SetupAPIRoutes(router, commandHandler, dbManager, sched)
	go func() {
		addr := fmt.Sprintf(":%d", config.Server.Port)
		log.Printf("🌐 API escuchando en %s", addr)
		if err := router.Run(addr); err != nil {
			log.Fatalf("❌ Error en el servidor HTTP: %v", err)
		}
	}()

	log.Println("🤖 Bot de recordatorios en marcha")

	// Espera la señal de apagado
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("👋 Apagando el bot...")
}
