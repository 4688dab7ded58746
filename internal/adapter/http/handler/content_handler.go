package handler

import (
	"net/http"

	"starbooks/internal/adapter/http/middleware"
	"starbooks/internal/core/ports"
	"starbooks/pkg/apperror"
	"starbooks/pkg/response"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves decrypted book content to entitled buyers.
type ContentHandler struct {
	contentSvc ports.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contentSvc ports.ContentService) *ContentHandler {
	return &ContentHandler{contentSvc: contentSvc}
}

// GetContent handles GET /api/v1/books/:bookID/content. The body is
// the raw decrypted content, not a JSON envelope, so clients can
// stream it straight into a reader.
func (h *ContentHandler) GetContent(c *gin.Context) {
	buyerID := c.GetString(middleware.CtxBuyerID)
	if buyerID == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	content, err := h.contentSvc.GetContent(c.Request.Context(), buyerID, c.Param("bookID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, content.MimeType, content.Bytes)
}
