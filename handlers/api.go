package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"recordatorio-bot/parser"
	"recordatorio-bot/scheduler"
)

// SetupAPIRoutes configura todas las rutas de la API REST
func SetupAPIRoutes(router *gin.Engine, handler *CommandHandler, dbManager DBManager, sched *scheduler.Scheduler) {
	// Habilita CORS
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Estado del servicio
	router.GET("/api/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":           "ok",
			"scheduled_timers": sched.ActiveCount(),
			"time":             time.Now().In(parser.Location).Format(time.RFC3339),
		})
	})

	// Recordatorios pendientes de un chat
	router.GET("/api/reminders", func(c *gin.Context) {
		chatID := c.Query("chat_id")
		if chatID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "falta el parámetro chat_id"})
			return
		}

		var err error
		var result interface{}
		switch c.Query("scope") {
		case "all":
			result, err = dbManager.GetAllReminders(chatID)
		case "today":
			result, err = dbManager.GetTodayReminders(chatID, time.Now().In(parser.Location))
		case "history":
			result, err = dbManager.GetHistoricalReminders(chatID, 50)
		default:
			result, err = dbManager.GetActiveReminders(chatID)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	// Crear un recordatorio desde la API (mismo parser que el chat)
	router.POST("/api/reminders", func(c *gin.Context) {
		var req struct {
			ChatID         string `json:"chat_id" binding:"required"`
			Text           string `json:"text" binding:"required"`
			Important      bool   `json:"important"`
			RepeatInterval int    `json:"repeat_interval"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		interval := req.RepeatInterval
		if req.Important {
			if interval < minRepeatInterval {
				interval = defaultRepeatInterval
			}
			if interval > maxRepeatInterval {
				interval = maxRepeatInterval
			}
		} else {
			interval = 0
		}

		r, err := handler.CreateReminder(req.ChatID, req.Text, req.Important, interval)
		switch {
		case err == ErrNoDate:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no se reconoció ninguna fecha en el texto"})
		case err == ErrPastDate:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "la fecha ya pasó"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusCreated, r)
		}
	})

	// Cancelar un recordatorio
	router.DELETE("/api/reminders/:id", func(c *gin.Context) {
		chatID := c.Query("chat_id")
		if chatID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "falta el parámetro chat_id"})
			return
		}
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
			return
		}

		ok, err := dbManager.CancelReminder(chatID, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no hay un recordatorio pendiente con ese ID"})
			return
		}
		sched.Cancel(id)
		c.JSON(http.StatusOK, gin.H{"cancelled": id})
	})

	// Bitácora de un chat
	router.GET("/api/vault", func(c *gin.Context) {
		chatID := c.Query("chat_id")
		if chatID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "falta el parámetro chat_id"})
			return
		}

		if keyword := c.Query("q"); keyword != "" {
			entries, err := dbManager.SearchVault(chatID, keyword)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, entries)
			return
		}

		entries, err := dbManager.GetVaultEntries(chatID, 50)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entries)
	})

	// WebSocket para avisos en vivo
	router.GET("/ws", func(c *gin.Context) {
		HandleWebSocket(c.Writer, c.Request)
	})
}
