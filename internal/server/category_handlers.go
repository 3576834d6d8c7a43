package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/appshell-dev/appshell/internal/models"
)

type CategoryRequest struct {
	Name string `json:"name" binding:"required" validate:"required,notblank,max=50"`
}

// CategoryResponse wraps categories returned from write endpoints
type CategoryResponse struct {
	Success  bool             `json:"success"`
	Category *models.Category `json:"category"`
}

// findOwnedCategory loads a category of userID. The returned status is 0 on
// success, 404 when the category does not exist, 403 when someone else owns it.
func (s *Server) findOwnedCategory(userID, id string) (*models.Category, int, error) {
	var category models.Category
	if err := models.FindByID(s.db, id, &category); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, nil
		}
		return nil, http.StatusInternalServerError, err
	}

	if category.UserID != userID {
		s.logger.Warn().
			Str("category_id", id).
			Str("user_id", userID).
			Msg("Access to another user's category denied")
		return nil, http.StatusForbidden, nil
	}

	return &category, 0, nil
}

// loadOwnedCategory resolves the :id category and writes the error response itself on failure
func (s *Server) loadOwnedCategory(c *gin.Context, param string) *models.Category {
	sessionData, exists := GetSessionData(c)
	if !exists {
		s.logger.Error().Msg("Session data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil
	}

	id := c.Param(param)
	category, status, err := s.findOwnedCategory(sessionData.UserID, id)
	switch status {
	case 0:
		return category
	case http.StatusNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
	case http.StatusForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this category"})
	default:
		s.logger.Error().Err(err).Str("category_id", id).Msg("Failed to find category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
	return nil
}

// @Router /api/categories [get]
// @Success 200 {array} models.Category
func (s *Server) listCategories(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	categories := []models.Category{}
	if err := s.db.Where("user_id = ?", sessionData.UserID).Order("name").Find(&categories).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// @Router /api/categories/{id} [get]
// @Success 200 {object} models.Category
func (s *Server) getCategory(c *gin.Context) {
	category := s.loadOwnedCategory(c, "id")
	if category == nil {
		return
	}
	c.JSON(http.StatusOK, category)
}

// @Router /api/categories [post]
// @Param body body CategoryRequest true "Category"
// @Success 201 {object} CategoryResponse
func (s *Server) createCategory(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	req, ok := s.bindCategory(c)
	if !ok {
		return
	}

	category := &models.Category{
		UserID: sessionData.UserID,
		Name:   strings.TrimSpace(req.Name),
	}
	if err := s.db.Create(category).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	s.logger.Info().Str("category_id", category.ID).Str("user_id", category.UserID).Msg("Category created")

	c.JSON(http.StatusCreated, CategoryResponse{Success: true, Category: category})
}

// @Router /api/categories/{id} [put]
// @Param body body CategoryRequest true "Category"
// @Success 200 {object} CategoryResponse
func (s *Server) updateCategory(c *gin.Context) {
	category := s.loadOwnedCategory(c, "id")
	if category == nil {
		return
	}

	req, ok := s.bindCategory(c)
	if !ok {
		return
	}

	category.Name = strings.TrimSpace(req.Name)
	if err := s.db.Save(category).Error; err != nil {
		s.logger.Error().Err(err).Str("category_id", category.ID).Msg("Failed to update category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, CategoryResponse{Success: true, Category: category})
}

// @Router /api/categories/{id} [delete]
// @Success 200 {object} map[string]interface{}
func (s *Server) deleteCategory(c *gin.Context) {
	category := s.loadOwnedCategory(c, "id")
	if category == nil {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Note{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", category.ID).Msg("Failed to delete category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	s.logger.Info().Str("category_id", category.ID).Msg("Category deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Router /api/notes/category/{categoryId} [get]
// @Param archived query bool false "List archived notes"
// @Success 200 {array} models.Note
func (s *Server) listNotesByCategory(c *gin.Context) {
	category := s.loadOwnedCategory(c, "categoryId")
	if category == nil {
		return
	}

	var q listNotesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}

	notes := []models.Note{}
	err := s.notesQuery(category.UserID, q.Archived).
		Where("category_id = ?", category.ID).
		Find(&notes).Error
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", category.ID).Msg("Failed to list notes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notes"})
		return
	}

	c.JSON(http.StatusOK, notes)
}

func (s *Server) bindCategory(c *gin.Context) (*CategoryRequest, bool) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return nil, false
	}

	if err := s.validator.Struct(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Request validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return nil, false
	}

	return &req, true
}
