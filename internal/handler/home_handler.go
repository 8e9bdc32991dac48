package handler

import (
	"net/http"
	"time"

	"github.com/cinematalkiez/blackhole/internal/gate"
	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/cinematalkiez/blackhole/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"
)

// HomeHandler renders the home screen for browsers holding a local grant
type HomeHandler struct {
	movies  *service.MovieService
	browser BrowserStorage
	now     func() time.Time
	log     *zap.Logger
}

func NewHomeHandler(movies *service.MovieService, browser BrowserStorage, now func() time.Time, log *zap.Logger) *HomeHandler {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HomeHandler{movies: movies, browser: browser, now: now, log: log}
}

// Home godoc
// @Summary Home screen
// @Description Hero carousel, genre tiles, newly released and per-genre rails. Redirects to / without a valid local token.
// @Tags Catalog
// @Produce html
// @Param q query string false "Title search"
// @Success 200 {string} string "HTML page"
// @Success 302
// @Router /index2 [get]
func (h *HomeHandler) Home(c *gin.Context) {
	store := h.browser.load(c)
	if !gate.LocalValid(store, h.now()) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	page, err := h.movies.BuildHomePage(c.Query("q"))
	if err != nil {
		h.log.Error("failed to build home page", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load movies"})
		return
	}

	c.Render(http.StatusOK, render.HTML{
		Template: pages,
		Name:     pageHome,
		Data:     page,
	})
}
