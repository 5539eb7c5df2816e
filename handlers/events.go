package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"habitual/config"
	"habitual/logger"
	"habitual/middleware"
	"habitual/services"
)

const wsWriteTimeout = 10 * time.Second

type wsMessage struct {
	Type string `json:"type"`
}

// EventsUpgrade authenticates the websocket handshake. Browsers cannot set
// headers on upgrade requests, so the token travels as a query parameter.
func EventsUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Token required",
		})
	}

	claims, err := middleware.ParseToken(tokenString, config.GetConfig().JWTSecret)
	if err != nil {
		e := err.(*fiber.Error)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	c.Locals("userID", claims.UserID)
	c.Locals("username", claims.Username)
	return c.Next()
}

// EventsWebSocket streams the user's habit events until either side hangs up
func EventsWebSocket(c *websocket.Conn) {
	userID, _ := c.Locals("userID").(uint)
	if userID == 0 {
		c.Close()
		return
	}

	sub := services.Events.Subscribe(userID)
	defer services.Events.Unsubscribe(sub)

	username, _ := c.Locals("username").(string)
	logger.Debug("event stream opened", "user", username)
	defer logger.Debug("event stream closed", "user", username)

	writes := make(chan []byte, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var in wsMessage
			if err := json.Unmarshal(msg, &in); err != nil {
				continue
			}
			if in.Type == "ping" {
				pong, _ := json.Marshal(wsMessage{Type: "pong"})
				select {
				case writes <- pong:
				default:
				}
			}
		}
	}()

	for {
		var payload []byte
		select {
		case <-done:
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warn("failed to encode event", "type", ev.Type, "err", err)
				continue
			}
			payload = data
		case payload = <-writes:
		}

		c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
