package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MaxImagesPerPost limits how many images a single post may reference.
const MaxImagesPerPost = 9

// ImageList stores an ordered list of image identifiers as a JSON array
// in a TEXT column, preserving display order.
type ImageList []string

// Value implements driver.Valuer.
func (l ImageList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. An empty or NULL column decodes to nil.
func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ImageList", value)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Post represents a single classified-ad record. Timestamp is the
// caller-supplied publication time used for ordering; CreatedAt/UpdatedAt
// are bookkeeping columns maintained by gorm.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Category  string    `gorm:"size:64;index;not null" json:"category"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Contact   string    `gorm:"size:255;not null" json:"contact"`
	Images    ImageList `gorm:"type:text" json:"images"`
	Timestamp int64     `gorm:"index;not null" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
