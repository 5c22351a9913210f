package handler

import (
	"log"
	"net/http"

	"anoa.com/classcollab/internal/service"
	"anoa.com/classcollab/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// ChatWSHandler bridges Redis pub/sub chat channels onto websocket
// connections. Messages flow one way, server to client; sending still goes
// through the REST endpoints so persistence and rate limiting apply.
type ChatWSHandler struct {
	service     service.ChatService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

func NewChatWSHandler(chatService service.ChatService, redisClient *redis.Client) *ChatWSHandler {
	return &ChatWSHandler{
		service:     chatService,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket subscribes the caller to one chat room. Room access is
// verified before the upgrade so unauthorized callers get a plain HTTP error
// instead of a dropped socket.
func (h *ChatWSHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	roomType := c.Param("roomType")

	var roomID uuid.UUID
	var channel string
	switch roomType {
	case service.RoomGroup, service.RoomClass:
		roomID, err = uuid.Parse(c.Param("roomId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
			return
		}
		if roomType == service.RoomGroup {
			channel = service.GroupChannel(roomID)
		} else {
			channel = service.ClassChannel(roomID)
		}
	case service.RoomPrivate:
		// Private chat always subscribes to the caller's own channel.
		roomID = userID
		channel = service.UserChannel(userID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown room type"})
		return
	}

	allowed, err := h.service.CanAccessRoom(c.Request.Context(), userID, roomType, roomID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this chat room"})
		return
	}

	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live chat is not available"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	pubsub := h.redisClient.Subscribe(c.Request.Context(), channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(c.Request.Context()); err != nil {
		log.Printf("Failed to subscribe to redis channel %s: %v", channel, err)
		return
	}

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-ch:
			// Payload is already the JSON-encoded message response.
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
