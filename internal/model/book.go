package model

import (
	"fmt"
	"time"
)

type Book struct {
	ID            uint     `gorm:"primaryKey;autoIncrement"`
	Title         string   `gorm:"size:100;not null;index"`
	Author        string   `gorm:"size:100;not null;index"`
	Description   *string  `gorm:"type:text"`
	Price         *float64
	PublishedYear *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (b Book) String() string {
	return fmt.Sprintf("<Book %s by %s>", b.Title, b.Author)
}

// ToMap flattens the record into its wire field names. Nil optionals stay nil
// so encoders emit null rather than a zero value.
func (b Book) ToMap() map[string]any {
	m := map[string]any{
		"id":             b.ID,
		"title":          b.Title,
		"author":         b.Author,
		"description":    nil,
		"price":          nil,
		"published_year": nil,
		"created_at":     formatTimestamp(b.CreatedAt),
		"updated_at":     formatTimestamp(b.UpdatedAt),
	}

	if b.Description != nil {
		m["description"] = *b.Description
	}
	if b.Price != nil {
		m["price"] = *b.Price
	}
	if b.PublishedYear != nil {
		m["published_year"] = *b.PublishedYear
	}

	return m
}

func formatTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
