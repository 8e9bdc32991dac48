package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/cinematalkiez/blackhole/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const heroCount = 3

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrSlugTaken     = errors.New("slug already in use")
)

// Genre browser tiles, in display order
var GenreTiles = []model.GenreTile{
	{Name: "action", Image: "/img/action.jpg"},
	{Name: "adventure", Image: "/img/adventure.jpg"},
	{Name: "comedy", Image: "/img/comedy.jpg"},
	{Name: "family", Image: "/img/family.jpg"},
	{Name: "romance", Image: "/img/romance.jpg"},
	{Name: "horror", Image: "/img/horror.jpg"},
	{Name: "crime", Image: "/img/crime.jpg"},
	{Name: "drama", Image: "/img/drama.jpg"},
	{Name: "fantasy", Image: "/img/fantasy.jpg"},
	{Name: "science_fiction", Image: "/img/scifi.jpg"},
}

// Home screen rails: title and genre tag
var GenreRails = []struct{ Title, Genre string }{
	{"Action", "action"},
	{"Adventure", "adventure"},
	{"Comedy", "comedy"},
	{"Love & Romantic", "romance"},
	{"Family", "family"},
	{"Drama", "drama"},
	{"Crime", "crime"},
	{"Horror", "horror"},
	{"Thriller", "thriller"},
	{"Fantasy", "fantasy"},
	{"Science-Fiction", "science_fiction"},
}

// Broadcaster fans catalogue events out to connected browsers
type Broadcaster interface {
	Broadcast(ctx context.Context, event model.WSEvent) error
}

// MovieService handles catalogue business logic
type MovieService struct {
	repo        *repository.MovieRepository
	broadcaster Broadcaster
	log         *zap.Logger
}

func NewMovieService(repo *repository.MovieRepository, broadcaster Broadcaster, log *zap.Logger) *MovieService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MovieService{repo: repo, broadcaster: broadcaster, log: log}
}

// ListAll returns the whole catalogue, newest first
func (s *MovieService) ListAll() ([]model.Movie, error) {
	movies, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	return movies, nil
}

// BuildHomePage assembles the home screen from the published catalogue
func (s *MovieService) BuildHomePage(query string) (*model.HomePage, error) {
	movies, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	return BuildHomePage(movies, query), nil
}

// Create adds a movie to the catalogue
func (s *MovieService) Create(req model.CreateMovieRequest) (*model.Movie, error) {
	slug := strings.TrimSpace(req.Slug)
	if _, err := s.repo.FindBySlug(slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = "draft"
	}

	movie := &model.Movie{
		Title:    strings.TrimSpace(req.Title),
		Slug:     slug,
		Type:     req.Type,
		SmPoster: req.SmPoster,
		BgPoster: req.BgPoster,
		Status:   status,
		Genre:    normalizeGenres(req.Genre),
	}
	if err := s.repo.Create(movie); err != nil {
		return nil, err
	}

	if movie.IsPublished() {
		s.announce(movie)
	}
	return movie, nil
}

// Publish makes a movie visible and notifies connected browsers
func (s *MovieService) Publish(id uuid.UUID) (*model.Movie, error) {
	if err := s.repo.UpdateStatus(id, model.MovieStatusPublish); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	movie, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	s.announce(movie)
	return movie, nil
}

// SetPosters updates a movie's poster URLs
func (s *MovieService) SetPosters(id uuid.UUID, smPoster, bgPoster string) error {
	if _, err := s.repo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMovieNotFound
		}
		return err
	}
	return s.repo.UpdatePosters(id, smPoster, bgPoster)
}

func (s *MovieService) announce(movie *model.Movie) {
	if s.broadcaster == nil {
		return
	}
	event := model.WSEvent{Type: model.WSEventMoviePublished, Payload: movie}
	if err := s.broadcaster.Broadcast(context.Background(), event); err != nil {
		s.log.Warn("catalog broadcast failed", zap.String("movie_id", movie.ID.String()), zap.Error(err))
	}
}

// ==================== Catalogue filters ====================

// FilterPublished keeps movies whose status is exactly "publish", in order
func FilterPublished(movies []model.Movie) []model.Movie {
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if m.IsPublished() {
			out = append(out, m)
		}
	}
	return out
}

// FilterByGenre keeps movies tagged with genre
func FilterByGenre(movies []model.Movie, genre string) []model.Movie {
	out := make([]model.Movie, 0)
	for _, m := range movies {
		if m.HasGenre(genre) {
			out = append(out, m)
		}
	}
	return out
}

// SearchByTitle matches titles case-insensitively. A blank query matches nothing.
func SearchByTitle(movies []model.Movie, query string) []model.Movie {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	out := make([]model.Movie, 0)
	for _, m := range movies {
		if strings.Contains(strings.ToLower(m.Title), q) {
			out = append(out, m)
		}
	}
	return out
}

// BuildHomePage lays out the home screen from a newest-first catalogue
func BuildHomePage(movies []model.Movie, query string) *model.HomePage {
	published := FilterPublished(movies)

	hero := published
	if len(hero) > heroCount {
		hero = hero[:heroCount]
	}

	sections := make([]model.GenreSection, 0, len(GenreRails))
	for _, rail := range GenreRails {
		sections = append(sections, model.GenreSection{
			Title:  rail.Title,
			Genre:  rail.Genre,
			Movies: FilterByGenre(published, rail.Genre),
		})
	}

	page := &model.HomePage{
		Hero:          hero,
		Genres:        GenreTiles,
		NewlyReleased: published,
		GenreSections: sections,
	}
	if q := strings.TrimSpace(query); q != "" {
		page.Query = q
		page.SearchResults = SearchByTitle(published, q)
	}
	return page
}

func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}
