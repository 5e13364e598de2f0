package handler

import (
	"notekeep-be/internal/pkg/logger"
	"notekeep-be/internal/pkg/serverutils"
	internalWS "notekeep-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// NoteSyncHandler upgrades authenticated clients to a websocket that receives
// board changes made from the user's other devices.
type NoteSyncHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewNoteSyncHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *NoteSyncHandler {
	return &NoteSyncHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs authenticates the handshake and hands the connection to the hub.
// Browsers pass the token as the "token" query parameter, other clients may
// use the Authorization header, which wins when both are set.
func (h *NoteSyncHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenStr := serverutils.BearerToken(c)
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	userID, err := serverutils.ParseUserToken(tokenStr, h.jwtSecret)
	if err != nil {
		h.logger.Warn("NoteSyncHandler", "Invalid token in handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NoteSyncHandler", "Starting websocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("NoteSyncHandler", "Websocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *NoteSyncHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/notes", h.ServeWs)
}
