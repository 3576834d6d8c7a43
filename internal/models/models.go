package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/appshell-dev/appshell/internal/assert"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
		assert.Length(b.ID, 26)
	}
	return nil
}

// Setting is a singleton row holding server-generated secrets
type Setting struct {
	BaseModel
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // Auto-generated on first start (64 hex chars)
}

// User represents an account of the notes/movies API
type User struct {
	BaseModel
	Username     string    `json:"username" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Category groups a user's notes. Deleting one leaves its notes uncategorised.
type Category struct {
	BaseModel
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Note is a user's note
type Note struct {
	BaseModel
	UserID     string    `json:"user_id" gorm:"index;not null"`
	CategoryID *string   `json:"category_id" gorm:"index;type:varchar(26)"`
	Title      string    `json:"title" gorm:"not null"`
	Content    string    `json:"content" gorm:"type:text"`
	IsPinned   bool      `json:"is_pinned" gorm:"not null;default:false"`
	IsArchived bool      `json:"is_archived" gorm:"not null;default:false"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	User     *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Category *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

// Movie is a read-only catalog entry
type Movie struct {
	BaseModel
	Title    string  `json:"title" gorm:"not null;uniqueIndex"`
	Year     int     `json:"year"`
	Director string  `json:"director"`
	Rating   float64 `json:"rating"`
	Summary  string  `json:"summary" gorm:"type:text"`
	Poster   string  `json:"poster,omitempty"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&Setting{}, &User{}, &Category{}, &Note{}, &Movie{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
