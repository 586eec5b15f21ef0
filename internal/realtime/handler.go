package realtime

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"fieldjobs/internal/domain"
	"fieldjobs/internal/pkg/jwt"
	"fieldjobs/internal/pkg/response"
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type Handler struct {
	hub      *Hub
	tokens   TokenValidator
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewHandler accepts browser connections only from allowedOrigins; an
// empty list or "*" allows any origin.
func NewHandler(hub *Hub, tokens TokenValidator, allowedOrigins []string, log logrus.FieldLogger) *Handler {
	return &Handler{
		hub:    hub,
		tokens: tokens,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		if set[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// Serve godoc
// @Summary Realtime change feed
// @Description Upgrades to a websocket. Authenticate with ?token=JWT, then send {"type":"subscribe","topic":"jobs:assigned_to=<id>"}.
// @Tags Realtime
// @Param token query string true "Access token"
// @Success 101
// @Failure 401 {object} map[string]interface{}
// @Router /ws [get]
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "token query parameter is required")
		return
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	viewer := Viewer{UserID: claims.UserID, Role: domain.UserRole(claims.Role)}
	h.log.WithFields(logrus.Fields{"user_id": viewer.UserID, "role": viewer.Role}).Debug("realtime client connected")
	h.hub.Serve(c.Request.Context(), conn, viewer)
}

func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.GET("/ws", h.Serve)
}
