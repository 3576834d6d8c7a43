package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/appshell-dev/appshell/internal/models"
)

type NoteRequest struct {
	Title      string `json:"title" binding:"required" validate:"required,notblank,max=200"`
	Content    string `json:"content" validate:"max=100000"`
	CategoryID string `json:"category_id" validate:"omitempty,len=26"`
}

type PinRequest struct {
	IsPinned *bool `json:"isPinned" binding:"required"`
}

type ArchiveRequest struct {
	IsArchived *bool `json:"isArchived" binding:"required"`
}

type listNotesQuery struct {
	Archived   bool   `form:"archived"`
	Keyword    string `form:"keyword"`
	CategoryID string `form:"categoryId"`
}

// likeEscaper escapes LIKE wildcards; patterns built with it need ESCAPE '\'
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NoteResponse wraps notes returned from write endpoints
type NoteResponse struct {
	Success bool         `json:"success"`
	Note    *models.Note `json:"note"`
}

// notesQuery scopes a query to the caller's notes, pinned first then most recent
func (s *Server) notesQuery(userID string, archived bool) *gorm.DB {
	return s.db.Where("user_id = ? AND is_archived = ?", userID, archived).
		Order("is_pinned DESC").
		Order("updated_at DESC")
}

// loadOwnedNote writes the error response itself and returns nil when the caller may not touch the note
func (s *Server) loadOwnedNote(c *gin.Context) *models.Note {
	sessionData, exists := GetSessionData(c)
	if !exists {
		s.logger.Error().Msg("Session data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil
	}

	id := c.Param("id")
	var note models.Note
	if err := models.FindByID(s.db, id, &note); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return nil
		}
		s.logger.Error().Err(err).Str("note_id", id).Msg("Failed to find note")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil
	}

	if note.UserID != sessionData.UserID {
		s.logger.Warn().
			Str("note_id", id).
			Str("user_id", sessionData.UserID).
			Msg("Access to another user's note denied")
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this note"})
		return nil
	}

	return &note
}

// @Router /api/notes [get]
// @Param archived query bool false "List archived notes"
// @Success 200 {array} models.Note
func (s *Server) listNotes(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var q listNotesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}

	notes := []models.Note{}
	if err := s.notesQuery(sessionData.UserID, q.Archived).Find(&notes).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list notes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notes"})
		return
	}

	c.JSON(http.StatusOK, notes)
}

// @Router /api/notes/search [get]
// @Param keyword query string true "Matched against title and content"
// @Success 200 {array} models.Note
func (s *Server) searchNotes(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var q listNotesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}

	query := s.notesQuery(sessionData.UserID, q.Archived)
	if keyword := strings.TrimSpace(q.Keyword); keyword != "" {
		like := "%" + likeEscaper.Replace(keyword) + "%"
		query = query.Where(`(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`, like, like)
	}
	if q.CategoryID != "" {
		query = query.Where("category_id = ?", q.CategoryID)
	}

	notes := []models.Note{}
	if err := query.Find(&notes).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to search notes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search notes"})
		return
	}

	c.JSON(http.StatusOK, notes)
}

// @Router /api/notes/{id} [get]
// @Success 200 {object} models.Note
func (s *Server) getNote(c *gin.Context) {
	note := s.loadOwnedNote(c)
	if note == nil {
		return
	}
	c.JSON(http.StatusOK, note)
}

// @Router /api/notes [post]
// @Param body body NoteRequest true "Note"
// @Success 201 {object} NoteResponse
func (s *Server) createNote(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	req, ok := s.bindNote(c)
	if !ok {
		return
	}

	categoryID, ok := s.noteCategory(c, sessionData.UserID, req.CategoryID)
	if !ok {
		return
	}

	note := &models.Note{
		UserID:     sessionData.UserID,
		CategoryID: categoryID,
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
	}
	if err := s.db.Create(note).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create note")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
		return
	}

	s.logger.Info().Str("note_id", note.ID).Str("user_id", note.UserID).Msg("Note created")

	c.JSON(http.StatusCreated, NoteResponse{Success: true, Note: note})
}

// @Router /api/notes/{id} [put]
// @Param body body NoteRequest true "Note"
// @Success 200 {object} NoteResponse
func (s *Server) updateNote(c *gin.Context) {
	note := s.loadOwnedNote(c)
	if note == nil {
		return
	}

	req, ok := s.bindNote(c)
	if !ok {
		return
	}

	categoryID, ok := s.noteCategory(c, note.UserID, req.CategoryID)
	if !ok {
		return
	}

	note.Title = strings.TrimSpace(req.Title)
	note.Content = req.Content
	note.CategoryID = categoryID
	if err := s.db.Save(note).Error; err != nil {
		s.logger.Error().Err(err).Str("note_id", note.ID).Msg("Failed to update note")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update note"})
		return
	}

	c.JSON(http.StatusOK, NoteResponse{Success: true, Note: note})
}

// @Router /api/notes/{id} [delete]
// @Success 200 {object} map[string]interface{}
func (s *Server) deleteNote(c *gin.Context) {
	note := s.loadOwnedNote(c)
	if note == nil {
		return
	}

	if err := s.db.Delete(note).Error; err != nil {
		s.logger.Error().Err(err).Str("note_id", note.ID).Msg("Failed to delete note")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note"})
		return
	}

	s.logger.Info().Str("note_id", note.ID).Msg("Note deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Router /api/notes/{id}/pin [put]
// @Param body body PinRequest true "Pin state"
// @Success 200 {object} NoteResponse
func (s *Server) pinNote(c *gin.Context) {
	note := s.loadOwnedNote(c)
	if note == nil {
		return
	}

	var req PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	s.updateFlag(c, note, "is_pinned", *req.IsPinned)
}

// @Router /api/notes/{id}/archive [put]
// @Param body body ArchiveRequest true "Archive state"
// @Success 200 {object} NoteResponse
func (s *Server) archiveNote(c *gin.Context) {
	note := s.loadOwnedNote(c)
	if note == nil {
		return
	}

	var req ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	s.updateFlag(c, note, "is_archived", *req.IsArchived)
}

func (s *Server) updateFlag(c *gin.Context, note *models.Note, column string, value bool) {
	if err := s.db.Model(note).Update(column, value).Error; err != nil {
		s.logger.Error().Err(err).Str("note_id", note.ID).Str("column", column).Msg("Failed to update note")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update note"})
		return
	}

	if err := models.FindByID(s.db, note.ID, note); err != nil {
		s.logger.Error().Err(err).Str("note_id", note.ID).Msg("Failed to reload note")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, NoteResponse{Success: true, Note: note})
}

// noteCategory checks that id names one of userID's categories. An empty id
// means uncategorised. It writes the error response itself when ok is false.
func (s *Server) noteCategory(c *gin.Context, userID, id string) (categoryID *string, ok bool) {
	if id == "" {
		return nil, true
	}

	category, status, err := s.findOwnedCategory(userID, id)
	switch status {
	case 0:
		return &category.ID, true
	case http.StatusNotFound:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
	case http.StatusForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this category"})
	default:
		s.logger.Error().Err(err).Str("category_id", id).Msg("Failed to find category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
	return nil, false
}

func (s *Server) bindNote(c *gin.Context) (*NoteRequest, bool) {
	var req NoteRequest
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
