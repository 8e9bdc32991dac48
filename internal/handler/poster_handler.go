package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/cinematalkiez/blackhole/internal/service"
	"github.com/cinematalkiez/blackhole/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Max poster size: 10MB
const maxPosterSize = 10 << 20

// PosterHandler uploads poster images to object storage
type PosterHandler struct {
	storage storage.ObjectStore
	movies  *service.MovieService
}

func NewPosterHandler(store storage.ObjectStore, movies *service.MovieService) *PosterHandler {
	return &PosterHandler{storage: store, movies: movies}
}

// UploadPoster godoc
// @Summary Upload a poster image
// @Description Stores a jpg, png, gif or webp poster and returns its public URL. When movie_id is given the poster is attached to that movie.
// @Tags Catalog
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Poster image"
// @Param variant formData string false "Poster variant" Enums(sm, bg)
// @Param movie_id formData string false "Movie to attach the poster to"
// @Success 200 {object} model.UploadResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/posters [post]
func (h *PosterHandler) UploadPoster(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "Object storage is not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPosterSize)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: "File too large (max 10MB)"})
			return
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "File is required", Message: err.Error()})
		return
	}
	defer file.Close()

	contentType := storage.ImageContentType(header.Filename)
	if contentType == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Unsupported file type",
			Message: "Allowed: jpg, png, gif, webp",
		})
		return
	}

	variant := c.DefaultPostForm("variant", storage.PosterSmall)
	if variant != storage.PosterSmall && variant != storage.PosterBackground {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "variant must be sm or bg"})
		return
	}

	var movieID uuid.UUID
	if raw := c.PostForm("movie_id"); raw != "" {
		if movieID, err = uuid.Parse(raw); err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid movie ID"})
			return
		}
	}

	objectName := storage.PosterObjectName(variant, header.Filename, time.Now())
	result, err := h.storage.Put(c.Request.Context(), file, header.Size, objectName, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to upload file", Message: err.Error()})
		return
	}

	if movieID != uuid.Nil {
		sm, bg := result.URL, ""
		if variant == storage.PosterBackground {
			sm, bg = "", result.URL
		}
		if err := h.movies.SetPosters(movieID, sm, bg); err != nil {
			_ = h.storage.Delete(c.Request.Context(), result.Key)
			if errors.Is(err, service.ErrMovieNotFound) {
				c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to attach poster", Message: err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, model.UploadResponse{
		URL:      result.URL,
		FileName: header.Filename,
		FileSize: result.FileSize,
		MimeType: result.MimeType,
	})
}
