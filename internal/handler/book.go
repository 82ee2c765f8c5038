package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/books-crud-api/internal/model"
	"github.com/snnyvrz/books-crud-api/internal/repository"
	"github.com/snnyvrz/books-crud-api/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BookHandler struct {
	repo   repository.BookRepository
	logger *zap.Logger
}

func NewBookHandler(repo repository.BookRepository, logger *zap.Logger) *BookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookHandler{repo: repo, logger: logger}
}

func (h *BookHandler) RegisterRoutes(r gin.IRouter) {
	books := r.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.POST("", h.CreateBook)
		books.GET("/:id", h.GetBookByID)
		books.PUT("/:id", h.UpdateBook)
		books.DELETE("/:id", h.DeleteBook)
	}
}

// ListBooks godoc
// @Summary      List books
// @Description  Get every stored book ordered by id
// @Tags         books
// @Produce      json
// @Success      200  {array}   Book
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "BOOK_LIST_FAILED", "failed to fetch books")
		return
	}

	out := make([]map[string]any, 0, len(books))
	for _, b := range books {
		out = append(out, b.ToMap())
	}

	c.JSON(http.StatusOK, out)
}

// GetBookByID godoc
// @Summary      Get a book by ID
// @Description  Get a single book by its integer id
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  Book
// @Failure      400  {object}  validation.ErrorResponse   "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse   "Book not found"
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books/{id} [get]
func (h *BookHandler) GetBookByID(c *gin.Context) {
	bookID, ok := parseID(c)
	if !ok {
		return
	}

	book, ok := h.findBook(c, bookID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, book.ToMap())
}

// CreateBook godoc
// @Summary      Create a book
// @Description  Create a new book. title and author are required
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateBookRequest          true  "Book to create"
// @Success      201      {object}  Book
// @Failure      400      {object}  validation.ErrorResponse   "Validation error"
// @Failure      500      {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	book := model.Book{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Price:         req.Price,
		PublishedYear: req.PublishedYear,
	}

	ctx := c.Request.Context()

	if err := h.repo.Create(ctx, &book); err != nil {
		h.internalError(c, err, "BOOK_CREATE_FAILED", "failed to create book")
		return
	}

	created, err := h.repo.FindByID(ctx, book.ID)
	if err != nil {
		h.internalError(c, err, "BOOK_FETCH_FAILED", "failed to fetch created book")
		return
	}

	h.logger.Info("book created", zap.Uint("book_id", created.ID))

	c.JSON(http.StatusCreated, created.ToMap())
}

// UpdateBook godoc
// @Summary      Update a book
// @Description  Partially update a book. Only keys present in the body are written; null clears an optional field
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id       path      int                 true  "Book ID"
// @Param        payload  body      UpdateBookRequest   true  "Fields to update"
// @Success      200      {object}  Book
// @Failure      400      {object}  validation.ErrorResponse   "Invalid ID or payload"
// @Failure      404      {object}  validation.ErrorResponse   "Book not found"
// @Failure      500      {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	bookID, ok := parseID(c)
	if !ok {
		return
	}

	book, ok := h.findBook(c, bookID)
	if !ok {
		return
	}

	var req UpdateBookRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	var present map[string]json.RawMessage
	if err := c.ShouldBindBodyWithJSON(&present); err != nil {
		writeError(c, http.StatusBadRequest,
			validation.CodeInvalidBody,
			"request body must be a JSON object",
		)
		return
	}

	fields, err := updateFields(req, present)
	if err != nil {
		writeError(c, http.StatusBadRequest, validation.CodeValidationFailed, err.Error())
		return
	}

	if len(fields) == 0 {
		c.JSON(http.StatusOK, book.ToMap())
		return
	}

	ctx := c.Request.Context()

	if err := h.repo.Update(ctx, book.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeNotFound(c, book.ID)
			return
		}

		h.internalError(c, err, "BOOK_UPDATE_FAILED", "failed to update book")
		return
	}

	updated, err := h.repo.FindByID(ctx, book.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeNotFound(c, book.ID)
			return
		}

		h.internalError(c, err, "BOOK_FETCH_FAILED", "failed to fetch updated book")
		return
	}

	c.JSON(http.StatusOK, updated.ToMap())
}

// DeleteBook godoc
// @Summary      Delete a book
// @Description  Delete a book by its integer id
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  validation.ErrorResponse   "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse   "Book not found"
// @Failure      500  {object}  validation.ErrorResponse   "Internal server error"
// @Router       /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeNotFound(c, bookID)
			return
		}

		h.internalError(c, err, "BOOK_DELETE_FAILED", "failed to delete book")
		return
	}

	h.logger.Info("book deleted", zap.Uint("book_id", bookID))

	c.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Book with ID %d deleted successfully", bookID),
	})
}

func (h *BookHandler) findBook(c *gin.Context, id uint) (*model.Book, bool) {
	book, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeNotFound(c, id)
			return nil, false
		}

		h.internalError(c, err, "BOOK_FETCH_FAILED", "failed to fetch book")
		return nil, false
	}
	return book, true
}

func (h *BookHandler) internalError(c *gin.Context, err error, code, message string) {
	h.logger.Error(message,
		zap.String("code", code),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	writeError(c, http.StatusInternalServerError, code, message)
}

// updateFields turns the keys present in an update body into column values.
// Unknown keys are ignored. title and author follow the create rules: they
// cannot be cleared or set to an empty string.
func updateFields(req UpdateBookRequest, present map[string]json.RawMessage) (map[string]any, error) {
	fields := make(map[string]any, len(present))

	if _, ok := present["title"]; ok {
		title, err := requiredString("title", req.Title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if _, ok := present["author"]; ok {
		author, err := requiredString("author", req.Author)
		if err != nil {
			return nil, err
		}
		fields["author"] = author
	}
	if _, ok := present["description"]; ok {
		fields["description"] = nullable(req.Description)
	}
	if _, ok := present["price"]; ok {
		fields["price"] = nullable(req.Price)
	}
	if _, ok := present["published_year"]; ok {
		fields["published_year"] = nullable(req.PublishedYear)
	}

	return fields, nil
}

func requiredString(field string, p *string) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%s cannot be null", field)
	}
	if *p == "" {
		return "", fmt.Errorf("%s cannot be empty", field)
	}
	return *p, nil
}

// nullable unwraps p so gorm writes NULL for a nil pointer.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
