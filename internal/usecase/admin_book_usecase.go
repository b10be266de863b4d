package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

// AdminBookUsecase はカタログの管理者操作（登録・更新・削除）。
// 著者・カテゴリは名前で受けてget-or-createする。
type AdminBookUsecase struct {
	bookRepo     repo.BookRepository
	authorRepo   repo.AuthorRepository
	categoryRepo repo.CategoryRepository
	auditRepo    repo.AuditLogRepository
	logger       *zap.Logger
}

func NewAdminBookUsecase(
	bookRepo repo.BookRepository,
	authorRepo repo.AuthorRepository,
	categoryRepo repo.CategoryRepository,
	auditRepo repo.AuditLogRepository,
	logger *zap.Logger,
) *AdminBookUsecase {
	return &AdminBookUsecase{
		bookRepo:     bookRepo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
		logger:       logger,
	}
}

type BookInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	PublishedDate string `json:"published_date"`
	ISBN          string `json:"isbn"`
	Price         int64  `json:"price"`
	Author        string `json:"author"`
	Category      string `json:"category"`
}

func (in BookInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if strings.TrimSpace(in.Author) == "" {
		return NewHTTPError(http.StatusBadRequest, "author is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return NewHTTPError(http.StatusBadRequest, "category is required")
	}
	if in.PublishedDate != "" {
		if _, err := time.Parse("2006-01-02", in.PublishedDate); err != nil {
			return NewHTTPError(http.StatusBadRequest, "invalid published_date")
		}
	}
	return nil
}

func (u *AdminBookUsecase) resolveRefs(ctx context.Context, in BookInput) (int64, int64, error) {
	author, err := u.authorRepo.GetOrCreateByName(ctx, strings.TrimSpace(in.Author))
	if err != nil {
		return 0, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	category, err := u.categoryRepo.GetOrCreateByName(ctx, strings.TrimSpace(in.Category))
	if err != nil {
		return 0, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return author.ID, category.ID, nil
}

func parsePublished(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// CreateBook は書籍の登録。ISBNの重複は409。
func (u *AdminBookUsecase) CreateBook(ctx context.Context, actorUserID int64, in BookInput) (BookResponse, error) {
	if err := in.validate(); err != nil {
		return BookResponse{}, err
	}

	if in.ISBN != "" {
		if _, err := u.bookRepo.FindByISBN(ctx, in.ISBN); err == nil {
			return BookResponse{}, NewHTTPError(http.StatusConflict, "isbn already exists")
		} else if err != repo.ErrNotFound {
			return BookResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	authorID, categoryID, err := u.resolveRefs(ctx, in)
	if err != nil {
		return BookResponse{}, err
	}

	created, err := u.bookRepo.Create(ctx, model.Book{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		PublishedDate: parsePublished(in.PublishedDate),
		ISBN:          in.ISBN,
		Price:         in.Price,
		AuthorID:      authorID,
		CategoryID:    categoryID,
	})
	if err != nil {
		return BookResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.recordAudit(ctx, actorUserID, model.AuditActionCreateBook, created.ID, nil, &created)

	return u.toResponse(created, in.Author, in.Category), nil
}

// UpdateBook は書籍の更新。
func (u *AdminBookUsecase) UpdateBook(ctx context.Context, actorUserID int64, bookID int64, in BookInput) (BookResponse, error) {
	if bookID <= 0 {
		return BookResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return BookResponse{}, err
	}

	before, err := u.bookRepo.FindByID(ctx, bookID)
	if err == repo.ErrNotFound {
		return BookResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return BookResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	authorID, categoryID, err := u.resolveRefs(ctx, in)
	if err != nil {
		return BookResponse{}, err
	}

	after := before
	after.Title = strings.TrimSpace(in.Title)
	after.Description = in.Description
	after.PublishedDate = parsePublished(in.PublishedDate)
	after.ISBN = in.ISBN
	after.Price = in.Price
	after.AuthorID = authorID
	after.CategoryID = categoryID

	if err := u.bookRepo.Update(ctx, after); err != nil {
		if err == repo.ErrNotFound {
			return BookResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return BookResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.recordAudit(ctx, actorUserID, model.AuditActionUpdateBook, bookID, &before, &after)

	return u.toResponse(after, in.Author, in.Category), nil
}

// DeleteBook は論理削除。注文明細はスナップショットを持つので履歴は壊れない。
func (u *AdminBookUsecase) DeleteBook(ctx context.Context, actorUserID int64, bookID int64) error {
	if bookID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	before, err := u.bookRepo.FindByID(ctx, bookID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.bookRepo.SoftDelete(ctx, bookID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.recordAudit(ctx, actorUserID, model.AuditActionDeleteBook, bookID, &before, nil)
	return nil
}

func (u *AdminBookUsecase) toResponse(b model.Book, author, category string) BookResponse {
	resp := BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		ISBN:        b.ISBN,
		Price:       b.Price,
		Author:      strings.TrimSpace(author),
		Category:    strings.TrimSpace(category),
	}
	if b.PublishedDate != nil {
		resp.PublishedDate = b.PublishedDate.Format("2006-01-02")
	}
	return resp
}

func (u *AdminBookUsecase) recordAudit(ctx context.Context, actorUserID int64, action model.AuditAction, bookID int64, before, after *model.Book) {
	marshal := func(b *model.Book) string {
		if b == nil {
			return ""
		}
		raw, _ := json.Marshal(b)
		return string(raw)
	}

	err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: model.AuditResourceBook,
		ResourceID:   bookID,
		BeforeJSON:   marshal(before),
		AfterJSON:    marshal(after),
	})
	if err != nil {
		u.logger.Warn("audit log write failed",
			zap.Int64("book_id", bookID), zap.Error(err))
	}
}
