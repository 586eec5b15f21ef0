package proxy

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	fetcher *Fetcher
	log     logrus.FieldLogger
}

func NewHandler(fetcher *Fetcher, log logrus.FieldLogger) *Handler {
	return &Handler{fetcher: fetcher, log: log}
}

// Image godoc
// @Summary Same-origin evidence proxy
// @Description Streams an evidence file from the configured store so browsers can read it without CORS.
// @Tags Proxy
// @Param url query string true "Evidence URL"
// @Success 200 {file} binary
// @Failure 400,403 {string} string
// @Router /proxy-image [get]
func (h *Handler) Image(c *gin.Context) {
	obj, err := h.fetcher.Fetch(c.Request.Context(), c.Query("url"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer obj.Body.Close()

	c.Header("Content-Type", obj.ContentType)
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	if obj.ContentLength >= 0 {
		c.Header("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj.Body); err != nil {
		h.log.WithError(err).Warn("proxy stream interrupted")
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrMissingURL):
		c.String(http.StatusBadRequest, "Missing URL parameter")
	case errors.Is(err, ErrInvalidURL):
		c.String(http.StatusBadRequest, "Invalid URL parameter")
	case errors.Is(err, ErrForbidden):
		h.log.WithField("url", c.Query("url")).Warn("blocked proxy request outside evidence store")
		c.String(http.StatusForbidden, "Forbidden: External URLs not allowed")
	case errors.As(err, &upstream):
		c.String(upstream.Status, "Failed to fetch image: "+upstream.Text)
	default:
		h.log.WithError(err).Error("proxy fetch failed")
		c.String(http.StatusBadGateway, "Failed to fetch image")
	}
}
