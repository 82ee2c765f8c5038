package handler

import "time"

type CreateBookRequest struct {
	Title         string   `json:"title" binding:"required" example:"Dune"`
	Author        string   `json:"author" binding:"required" example:"Frank Herbert"`
	Description   *string  `json:"description" example:"Epic science fiction"`
	Price         *float64 `json:"price" example:"9.99"`
	PublishedYear *int     `json:"published_year" example:"1965"`
}

// UpdateBookRequest carries the typed values of a partial update. Which
// fields are written is decided by the keys present in the body, so an
// explicit null clears an optional field.
type UpdateBookRequest struct {
	Title         *string  `json:"title" example:"Dune Messiah"`
	Author        *string  `json:"author" example:"Frank Herbert"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" example:"12.5"`
	PublishedYear *int     `json:"published_year" example:"1969"`
}

// Book is the JSON shape produced by model.Book.ToMap.
type Book struct {
	ID            uint      `json:"id" example:"1"`
	Title         string    `json:"title" example:"Dune"`
	Author        string    `json:"author" example:"Frank Herbert"`
	Description   *string   `json:"description"`
	Price         *float64  `json:"price" example:"9.99"`
	PublishedYear *int      `json:"published_year" example:"1965"`
	CreatedAt     time.Time `json:"created_at" example:"2025-11-24T10:00:00Z"`
	UpdatedAt     time.Time `json:"updated_at" example:"2025-11-24T10:00:00Z"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Book with ID 1 deleted successfully"`
}
