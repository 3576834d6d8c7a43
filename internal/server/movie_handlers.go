package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/appshell-dev/appshell/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type pageQuery struct {
	Page int `form:"page" validate:"omitempty,min=1"`
	Size int `form:"size" validate:"omitempty,min=1,max=100"`
}

// MoviePage is one page of the catalog
type MoviePage struct {
	Records []models.Movie `json:"records"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Size    int            `json:"size"`
}

// @Router /api/movies/movies/page [get]
// @Param page query int false "1-based page"
// @Param size query int false "Page size (max 100)"
// @Success 200 {object} MoviePage
func (s *Server) listMovies(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}
	if err := s.validator.Struct(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	if q.Page == 0 {
		q.Page = 1
	}
	if q.Size == 0 {
		q.Size = defaultPageSize
	}
	q.Size = min(q.Size, maxPageSize)

	page := MoviePage{Records: []models.Movie{}, Page: q.Page, Size: q.Size}

	if err := s.db.Model(&models.Movie{}).Count(&page.Total).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count movies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list movies"})
		return
	}

	err := s.db.Order("rating DESC").Order("title ASC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&page.Records).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list movies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list movies"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// @Router /api/movies/{id} [get]
// @Success 200 {object} models.Movie
func (s *Server) getMovie(c *gin.Context) {
	id := c.Param("id")

	var movie models.Movie
	if err := models.FindByID(s.db, id, &movie); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return
		}
		s.logger.Error().Err(err).Str("movie_id", id).Msg("Failed to find movie")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, movie)
}
