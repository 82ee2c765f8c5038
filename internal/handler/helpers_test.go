package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/books-crud-api/internal/db"
	"github.com/snnyvrz/books-crud-api/internal/model"
	"github.com/snnyvrz/books-crud-api/internal/repository"
	"github.com/snnyvrz/books-crud-api/internal/validation"
	"gorm.io/gorm"
)

type fakeBookRepo struct {
	CreateFn   func(ctx context.Context, b *model.Book) error
	ListFn     func(ctx context.Context) ([]model.Book, error)
	FindByIDFn func(ctx context.Context, id uint) (*model.Book, error)
	UpdateFn   func(ctx context.Context, id uint, fields map[string]any) error
	DeleteFn   func(ctx context.Context, id uint) error
}

func (f *fakeBookRepo) Create(ctx context.Context, b *model.Book) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, b)
	}
	return nil
}

func (f *fakeBookRepo) List(ctx context.Context) ([]model.Book, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx)
	}
	return []model.Book{}, nil
}

func (f *fakeBookRepo) FindByID(ctx context.Context, id uint) (*model.Book, error) {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBookRepo) Update(ctx context.Context, id uint, fields map[string]any) error {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, id, fields)
	}
	return nil
}

func (f *fakeBookRepo) Delete(ctx context.Context, id uint) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}

func setupBookRouterWithRepo(repo repository.BookRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.RegisterJSONTagNames()

	r := gin.New()
	NewBookHandler(repo, nil).RegisterRoutes(r)
	return r
}

func setupTestRouter(gdb *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.RegisterJSONTagNames()

	r := gin.New()
	r.Use(db.SessionMiddleware(gdb))
	NewBookHandler(repository.NewGormBookRepository(gdb), nil).RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) validation.ErrorResponse {
	t.Helper()

	var resp validation.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v, body=%s", err, w.Body.String())
	}
	return resp
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
