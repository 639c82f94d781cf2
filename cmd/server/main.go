// Command server exposes the oracle over HTTP. Sessions are carried in a
// cookie so a browser client keeps its conversation across requests.
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gothamlabs/oracle"
	"github.com/gothamlabs/oracle/helper"
	"github.com/gothamlabs/oracle/model"
)

const sessionCookie = "oracle_session"

func main() {
	config, err := helper.NewDatabaseConfiguration()
	if err != nil {
		log.Fatalf("Failed to load database configuration: %v", err)
	}

	o, err := oracle.NewOracle(config, model.DefaultEngineConfig())
	if err != nil {
		log.Fatalf("Failed to create oracle: %v", err)
	}
	defer o.Close()

	router := gin.Default()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/chat", handleChat(o))
	api.POST("/session/new", handleNewSession(o))
	api.POST("/session/reset", handleResetSession(o))
	api.GET("/session/status", handleSessionStatus(o))
	api.GET("/stats", handleStats(o))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// sessionID reads the session cookie, minting a new session when absent.
func sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}

	id := uuid.New().String()
	c.SetCookie(sessionCookie, id, 3600, "/", "", false, true)
	return id
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

func handleChat(o *oracle.Oracle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}

		id := req.SessionID
		if id == "" {
			id = sessionID(c)
		}

		response := o.HandleQuery(c.Request.Context(), id, req.Message)

		status := http.StatusOK
		if response.ErrorKind == model.ErrorGatewayUnavailable {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"session_id": id,
			"response":   response,
		})
	}
}

func handleNewSession(o *oracle.Oracle) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := o.NewSession()
		c.SetCookie(sessionCookie, id, 3600, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"session_id": id})
	}
}

func handleResetSession(o *oracle.Oracle) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sessionID(c)
		o.ResetSession(id)
		c.JSON(http.StatusOK, gin.H{"session_id": id, "reset": true})
	}
}

func handleSessionStatus(o *oracle.Oracle) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sessionID(c)
		c.JSON(http.StatusOK, gin.H{
			"session_id": id,
			"state":      o.SessionStatus(id),
		})
	}
}

func handleStats(o *oracle.Oracle) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := o.Stats()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect stats"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
