package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovieStatusPublish is the only status shown to visitors
const MovieStatusPublish = "publish"

// Movie is a catalogue entry as served by /api/getmovies
type Movie struct {
	ID        uuid.UUID `json:"_id" gorm:"type:uuid;primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Slug      string    `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Type      string    `json:"type" gorm:"size:50"`
	SmPoster  string    `json:"smposter" gorm:"size:500"`
	BgPoster  string    `json:"bgposter" gorm:"size:500"`
	Status    string    `json:"status" gorm:"size:20;not null;default:'draft';index"`
	Genre     []string  `json:"genre" gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an id when none is set
func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IsPublished checks the status literal
func (m *Movie) IsPublished() bool {
	return m.Status == MovieStatusPublish
}

// HasGenre checks membership of tag in the genre collection
func (m *Movie) HasGenre(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return false
	}
	for _, g := range m.Genre {
		if strings.ToLower(strings.TrimSpace(g)) == tag {
			return true
		}
	}
	return false
}

// GenreTile is an entry of the genre browser
type GenreTile struct {
	Name  string `json:"name"`
	Image string `json:"img"`
}

// GenreSection is a titled rail filtered by one genre tag
type GenreSection struct {
	Title  string  `json:"title"`
	Genre  string  `json:"genre"`
	Movies []Movie `json:"movies"`
}

// HomePage is everything the home screen renders
type HomePage struct {
	Query         string         `json:"query,omitempty"`
	SearchResults []Movie        `json:"searchResults,omitempty"`
	Hero          []Movie        `json:"hero"`
	Genres        []GenreTile    `json:"genres"`
	NewlyReleased []Movie        `json:"newlyReleased"`
	GenreSections []GenreSection `json:"genreSections"`
}
