package repository

import (
	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovieRepository handles database operations for the catalogue
type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Create inserts a new movie
func (r *MovieRepository) Create(movie *model.Movie) error {
	return r.db.Create(movie).Error
}

// ListAll returns every movie, newest first
func (r *MovieRepository) ListAll() ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.Order("created_at DESC").Find(&movies).Error
	return movies, err
}

// FindByID finds a movie by UUID
func (r *MovieRepository) FindByID(id uuid.UUID) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Where("id = ?", id).First(&movie).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindBySlug finds a movie by slug
func (r *MovieRepository) FindBySlug(slug string) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Where("slug = ?", slug).First(&movie).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// UpdateStatus sets a movie's status
func (r *MovieRepository) UpdateStatus(id uuid.UUID, status string) error {
	res := r.db.Model(&model.Movie{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePosters sets a movie's poster URLs, skipping empty ones
func (r *MovieRepository) UpdatePosters(id uuid.UUID, smPoster, bgPoster string) error {
	updates := map[string]interface{}{}
	if smPoster != "" {
		updates["sm_poster"] = smPoster
	}
	if bgPoster != "" {
		updates["bg_poster"] = bgPoster
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&model.Movie{}).Where("id = ?", id).Updates(updates).Error
}
