package generate

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	gen Generator
}

// Register mounts the generation endpoint. gen may be nil when no
// upstream is configured; requests then get a 503.
func Register(rg *gin.RouterGroup, gen Generator) {
	h := &Handler{gen: gen}
	rg.POST("", h.generate)
}

type generateReq struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) generate(c *gin.Context) {
	if h.gen == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "code generation is not configured"})
		return
	}

	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	code, err := h.gen.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}
