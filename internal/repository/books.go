package repository

import (
	"context"

	"github.com/snnyvrz/books-crud-api/internal/db"
	"github.com/snnyvrz/books-crud-api/internal/model"
	"gorm.io/gorm"
)

// Columns a partial update may touch. id and the timestamps are managed by
// the database layer.
var UpdatableColumns = []string{"title", "author", "description", "price", "published_year"}

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id uint) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type GormBookRepository struct {
	db *gorm.DB
}

func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

func (r *GormBookRepository) session(ctx context.Context) *gorm.DB {
	return db.FromContext(ctx, r.db)
}

func (r *GormBookRepository) Create(ctx context.Context, book *model.Book) error {
	return r.session(ctx).Create(book).Error
}

func (r *GormBookRepository) FindByID(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	if err := r.session(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *GormBookRepository) List(ctx context.Context) ([]model.Book, error) {
	books := make([]model.Book, 0)
	if err := r.session(ctx).Order("id ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// Update writes only the given columns; a nil value stores NULL. Keys outside
// UpdatableColumns are dropped. updated_at is refreshed by gorm, so a matched
// row always counts as affected and zero rows means the book is gone.
func (r *GormBookRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	updates := make(map[string]any, len(fields))
	for _, col := range UpdatableColumns {
		if v, ok := fields[col]; ok {
			updates[col] = v
		}
	}

	if len(updates) == 0 {
		return nil
	}

	result := r.session(ctx).
		Model(&model.Book{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormBookRepository) Delete(ctx context.Context, id uint) error {
	result := r.session(ctx).Delete(&model.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
