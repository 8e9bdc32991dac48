package handler

import (
	"errors"
	"net/http"

	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/cinematalkiez/blackhole/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MovieHandler handles catalogue endpoints
type MovieHandler struct {
	movies *service.MovieService
}

func NewMovieHandler(movies *service.MovieService) *MovieHandler {
	return &MovieHandler{movies: movies}
}

// GetMovies godoc
// @Summary List all movies
// @Description Every movie record, published or not, newest first.
// @Tags Catalog
// @Produce json
// @Success 200 {array} model.Movie
// @Failure 500 {object} model.ErrorResponse
// @Router /api/getmovies [get]
func (h *MovieHandler) GetMovies(c *gin.Context) {
	movies, err := h.movies.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load movies", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, movies)
}

// CreateMovie godoc
// @Summary Create a movie
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CreateMovieRequest true "Movie"
// @Success 201 {object} model.Movie
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/movies [post]
func (h *MovieHandler) CreateMovie(c *gin.Context) {
	var req model.CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	movie, err := h.movies.Create(req)
	if err != nil {
		if errors.Is(err, service.ErrSlugTaken) {
			c.JSON(http.StatusConflict, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to create movie", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, movie)
}

// PublishMovie godoc
// @Summary Publish a movie
// @Description Sets status to "publish" and notifies connected home screens.
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Movie ID"
// @Success 200 {object} model.Movie
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/movies/{id}/publish [post]
func (h *MovieHandler) PublishMovie(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid movie ID"})
		return
	}

	movie, err := h.movies.Publish(id)
	if err != nil {
		if errors.Is(err, service.ErrMovieNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to publish movie", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, movie)
}
