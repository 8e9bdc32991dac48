package main

import (
	"context"
	"errors"
	"time"

	"github.com/cinematalkiez/blackhole/internal/config"
	"github.com/cinematalkiez/blackhole/internal/database"
	"github.com/cinematalkiez/blackhole/internal/logger"
	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/cinematalkiez/blackhole/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type demoMovie struct {
	title  string
	slug   string
	kind   string
	status string
	genre  []string
}

var demoMovies = []demoMovie{
	{"Interstellar", "interstellar", "movie", model.MovieStatusPublish, []string{"science_fiction", "adventure", "drama"}},
	{"Mad Max: Fury Road", "mad-max-fury-road", "movie", model.MovieStatusPublish, []string{"action", "adventure"}},
	{"The Grand Budapest Hotel", "the-grand-budapest-hotel", "movie", model.MovieStatusPublish, []string{"comedy", "drama"}},
	{"La La Land", "la-la-land", "movie", model.MovieStatusPublish, []string{"romance", "drama"}},
	{"Coco", "coco", "movie", model.MovieStatusPublish, []string{"family", "fantasy", "adventure"}},
	{"Heat", "heat", "movie", model.MovieStatusPublish, []string{"crime", "action", "thriller"}},
	{"The Conjuring", "the-conjuring", "movie", model.MovieStatusPublish, []string{"horror"}},
	{"Prisoners", "prisoners", "movie", model.MovieStatusPublish, []string{"thriller", "crime"}},
	{"Spirited Away", "spirited-away", "movie", model.MovieStatusPublish, []string{"fantasy", "family"}},
	{"Dark", "dark", "series", model.MovieStatusPublish, []string{"science_fiction", "thriller"}},
	{"Untitled Sequel", "untitled-sequel", "movie", "draft", []string{"action"}},
}

func main() {
	cfg := config.Load()
	log := logger.New("info", cfg.App.Env)
	defer log.Sync()

	db, err := database.Open(cfg.DB, cfg.App.Env)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}
	log.Info("connected to database", zap.String("driver", cfg.DB.Driver))

	seedMovies(db, log)
	seedVerifications(db, log)

	log.Info("seeding completed")
}

func seedMovies(db *gorm.DB, log *zap.Logger) {
	repo := repository.NewMovieRepository(db)

	// oldest first so the first entry ends up last in "newest first" order
	base := time.Now().Add(-time.Duration(len(demoMovies)) * time.Hour)
	for i, m := range demoMovies {
		if _, err := repo.FindBySlug(m.slug); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to look up movie", zap.String("slug", m.slug), zap.Error(err))
			continue
		}

		movie := &model.Movie{
			Title:     m.title,
			Slug:      m.slug,
			Type:      m.kind,
			SmPoster:  "/img/posters/" + m.slug + "-sm.jpg",
			BgPoster:  "/img/posters/" + m.slug + "-bg.jpg",
			Status:    m.status,
			Genre:     m.genre,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Create(movie); err != nil {
			log.Error("failed to create movie", zap.String("slug", m.slug), zap.Error(err))
			continue
		}
		log.Info("created movie", zap.String("title", m.title), zap.String("status", m.status))
	}
}

// seedVerifications creates one verified and one pending device so the gate
// can be exercised by hand.
func seedVerifications(db *gorm.DB, log *zap.Logger) {
	repo := repository.NewVerificationRepository(db)
	ctx := context.Background()

	if err := repo.MarkVerified(ctx, "demo-verified-device", time.Now().UTC()); err != nil {
		log.Error("failed to seed verified device", zap.Error(err))
	}
	if err := repo.Register(ctx, "demo-pending-device"); err != nil {
		log.Error("failed to seed pending device", zap.Error(err))
	}
	log.Info("seeded verification records",
		zap.Strings("device_ids", []string{"demo-verified-device", "demo-pending-device"}))
}
