package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/classpilot/lms-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dev only, restrict in production
	},
}

func sendJSON(conn *websocket.Conn, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("ws JSON marshal error:", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Println("ws send error:", err)
	}
}

// HandleMaterialWebSocket streams text-extraction progress for one material.
func HandleMaterialWebSocket(c *gin.Context) {
	materialID := c.Param("id")
	token := c.Query("token")

	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket upgrade failed:", err)
		return
	}
	H.RegisterMaterial(materialID, conn)
	defer H.UnregisterMaterial(materialID, conn)

	sendJSON(conn, gin.H{"type": "connected", "message": "Connected to material " + materialID})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Printf("material WS disconnected: materialID=%s, userID=%s\n", materialID, claims.UserID)
	conn.Close()
}

// HandleStudentWebSocket streams grade-ready notifications for the
// authenticated student; the subscription key is the token's own user id.
func HandleStudentWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket upgrade failed:", err)
		return
	}
	H.RegisterStudent(claims.UserID, conn)
	defer H.UnregisterStudent(claims.UserID, conn)

	sendJSON(conn, gin.H{"type": "connected", "message": "Listening for grade updates"})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Printf("student WS disconnected: userID=%s\n", claims.UserID)
	conn.Close()
}
