package repository

import (
	"context"
	"errors"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type BookGormRepository struct {
	db *gorm.DB
}

func NewBookGormRepository(db *gorm.DB) *BookGormRepository {
	return &BookGormRepository{db: db}
}

func (r *BookGormRepository) List(ctx context.Context, q repo.BookListQuery) ([]model.Book, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	query := r.db.WithContext(ctx).Model(&model.Book{})

	//タイトル部分一致
	if q.Q != "" {
		query = query.Where("title ILIKE ?", "%"+q.Q+"%")
	}

	//カテゴリ名で絞り込み
	if q.Category != "" {
		query = query.
			Joins("join categories on categories.id = books.category_id").
			Where("categories.name = ?", q.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return []model.Book{}, 0, err
	}

	order := "books.id desc"
	switch q.Sort {
	case "price_asc":
		order = "books.price asc"
	case "price_desc":
		order = "books.price desc"
	case "title":
		order = "books.title asc"
	}

	var items []model.Book
	offset := (q.Page - 1) * q.Limit
	if err := query.Order(order).Limit(q.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Book{}, 0, err
	}

	return items, total, nil
}

func (r *BookGormRepository) FindByID(ctx context.Context, id int64) (model.Book, error) {
	var b model.Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Book{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (r *BookGormRepository) FindByISBN(ctx context.Context, isbn string) (model.Book, error) {
	var b model.Book
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Book{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (r *BookGormRepository) Create(ctx context.Context, b model.Book) (model.Book, error) {
	if err := r.db.WithContext(ctx).Create(&b).Error; err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (r *BookGormRepository) Update(ctx context.Context, b model.Book) error {
	res := r.db.WithContext(ctx).Model(&model.Book{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"title":          b.Title,
			"description":    b.Description,
			"published_date": b.PublishedDate,
			"isbn":           b.ISBN,
			"price":          b.Price,
			"author_id":      b.AuthorID,
			"category_id":    b.CategoryID,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ソフトデリート。注文明細は価格・数量をスナップショットで持つので壊れない。
func (r *BookGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Book{}, id)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// AuthorとCategoryはget-or-createだけの小さいリポジトリ。

type AuthorGormRepository struct {
	db *gorm.DB
}

func NewAuthorGormRepository(db *gorm.DB) *AuthorGormRepository {
	return &AuthorGormRepository{db: db}
}

func (r *AuthorGormRepository) FindByID(ctx context.Context, id int64) (model.Author, error) {
	var a model.Author
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Author{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Author{}, err
	}
	return a, nil
}

func (r *AuthorGormRepository) GetOrCreateByName(ctx context.Context, name string) (model.Author, error) {
	var a model.Author
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&a).Error
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Author{}, err
	}

	a = model.Author{Name: name}
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return model.Author{}, err
	}
	return a, nil
}

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (r *CategoryGormRepository) GetOrCreateByName(ctx context.Context, name string) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, err
	}

	c = model.Category{Name: name}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		//unique衝突なら先に作られたものを拾う
		var again model.Category
		if retryErr := r.db.WithContext(ctx).Where("name = ?", name).First(&again).Error; retryErr == nil {
			return again, nil
		}
		return model.Category{}, err
	}
	return c, nil
}
