package server

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm/clause"

	"github.com/appshell-dev/appshell/internal/models"
)

//go:embed seed/movies.yaml
var defaultMovieSeed []byte

type movieSeed struct {
	Movies []seedMovie `yaml:"movies"`
}

type seedMovie struct {
	Title    string  `yaml:"title" validate:"required,notblank"`
	Year     int     `yaml:"year" validate:"omitempty,min=1888"`
	Director string  `yaml:"director"`
	Rating   float64 `yaml:"rating" validate:"min=0,max=10"`
	Summary  string  `yaml:"summary"`
	Poster   string  `yaml:"poster" validate:"omitempty,url"`
}

// loadMovieSeed reads the catalog from path, or the built-in catalog when path is empty
func loadMovieSeed(path string) ([]seedMovie, error) {
	data := defaultMovieSeed
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read movie seed: %w", err)
		}
	}

	var seed movieSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse movie seed: %w", err)
	}

	return seed.Movies, nil
}

// seedMovies inserts catalog entries that are not already present, keyed by title
func (s *Server) seedMovies(movies []seedMovie) error {
	inserted := 0
	for i := range movies {
		m := movies[i]
		if err := s.validator.Struct(&m); err != nil {
			return fmt.Errorf("invalid movie seed entry %d: %w", i, err)
		}

		movie := &models.Movie{
			Title:    m.Title,
			Year:     m.Year,
			Director: m.Director,
			Rating:   m.Rating,
			Summary:  m.Summary,
			Poster:   m.Poster,
		}
		result := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "title"}},
			DoNothing: true,
		}).Create(movie)
		if result.Error != nil {
			return fmt.Errorf("failed to seed movie %q: %w", m.Title, result.Error)
		}
		inserted += int(result.RowsAffected)
	}

	if inserted > 0 {
		s.logger.Info().Int("count", inserted).Msg("Seeded movie catalog")
	}
	return nil
}
