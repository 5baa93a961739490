package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threedv/saiban/internal/config"
	"github.com/threedv/saiban/internal/infra/board"
	"github.com/threedv/saiban/internal/modules/serializer"
)

// BoardHandler exposes read-only lookups against the Board API so the UI can
// pick up incoming cases before a number is assigned.
type BoardHandler struct {
	client board.Client
	cfg    *config.Config
}

func NewBoardHandler(client board.Client, cfg *config.Config) *BoardHandler {
	return &BoardHandler{client: client, cfg: cfg}
}

// ListRecentProjects returns the latest Board cases, newest first. With
// ?unnumbered=true only cases missing a management number are returned.
func (h *BoardHandler) ListRecentProjects(c *gin.Context) {
	perPage := h.cfg.Board.ListPerPage
	if raw := c.Query("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("per_pageは1〜100で指定してください", err))
			return
		}
		perPage = n
	}
	onlyUnnumbered := c.Query("unnumbered") == "true"

	items, err := h.client.ListRecent(c.Request.Context(), perPage, onlyUnnumbered)
	if err != nil {
		respondBoardError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

// GetProjectByCaseNumber looks up a single Board case by its case number.
func (h *BoardHandler) GetProjectByCaseNumber(c *gin.Context) {
	p, err := h.client.FindByCaseNumber(c.Request.Context(), c.Param("caseNumber"))
	if err != nil {
		respondBoardError(c, err)
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("Boardに該当する案件がありません", nil))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

func respondBoardError(c *gin.Context, err error) {
	if errors.Is(err, board.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, serializer.Err(http.StatusServiceUnavailable, "Board API連携が設定されていません", nil))
		return
	}
	c.JSON(http.StatusBadGateway, serializer.Err(http.StatusBadGateway, "Board APIへの接続に失敗しました", err))
}
