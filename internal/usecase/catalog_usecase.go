package usecase

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bookstore/internal/domain/model"
	"bookstore/internal/infra/search"
	repo "bookstore/internal/repository"
)

// CatalogUsecase は書籍カタログの閲覧と外部検索。
type CatalogUsecase struct {
	bookRepo     repo.BookRepository
	authorRepo   repo.AuthorRepository
	categoryRepo repo.CategoryRepository
	search       *search.Client
	logger       *zap.Logger
}

func NewCatalogUsecase(
	bookRepo repo.BookRepository,
	authorRepo repo.AuthorRepository,
	categoryRepo repo.CategoryRepository,
	searchClient *search.Client,
	logger *zap.Logger,
) *CatalogUsecase {
	return &CatalogUsecase{
		bookRepo:     bookRepo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		search:       searchClient,
		logger:       logger,
	}
}

type BookResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	PublishedDate string `json:"published_date,omitempty"`
	ISBN          string `json:"isbn"`
	Price         int64  `json:"price"`
	Author        string `json:"author"`
	Category      string `json:"category"`
}

type BookListResponse struct {
	Books []BookResponse `json:"books"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type BookListInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

func (u *CatalogUsecase) toBookResponse(ctx context.Context, b model.Book) BookResponse {
	resp := BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		ISBN:        b.ISBN,
		Price:       b.Price,
	}
	if b.PublishedDate != nil {
		resp.PublishedDate = b.PublishedDate.Format("2006-01-02")
	}
	if a, err := u.authorRepo.FindByID(ctx, b.AuthorID); err == nil {
		resp.Author = a.Name
	}
	if c, err := u.categoryRepo.FindByID(ctx, b.CategoryID); err == nil {
		resp.Category = c.Name
	}
	return resp
}

// ListBooks はカタログの一覧（タイトル部分一致・カテゴリ絞り込み・並び替え）。
func (u *CatalogUsecase) ListBooks(ctx context.Context, in BookListInput) (BookListResponse, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}

	books, total, err := u.bookRepo.List(ctx, repo.BookListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        in.Q,
		Category: in.Category,
		Sort:     in.Sort,
	})
	if err != nil {
		return BookListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resp := BookListResponse{
		Books: make([]BookResponse, 0, len(books)),
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}
	for _, b := range books {
		resp.Books = append(resp.Books, u.toBookResponse(ctx, b))
	}
	return resp, nil
}

func (u *CatalogUsecase) GetBook(ctx context.Context, bookID int64) (BookResponse, error) {
	if bookID <= 0 {
		return BookResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	b, err := u.bookRepo.FindByID(ctx, bookID)
	if err == repo.ErrNotFound {
		return BookResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return BookResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.toBookResponse(ctx, b), nil
}

// SearchExternal は外部プロバイダ検索。結果はプロバイダ側の表現のまま返す
// （カタログへは取り込まない。取り込みは管理者の登録操作）。
func (u *CatalogUsecase) SearchExternal(ctx context.Context, query string) ([]search.BookResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "q is required")
	}
	if u.search == nil {
		return nil, NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	results, err := u.search.Search(ctx, query)
	if err != nil {
		u.logger.Warn("external search failed", zap.String("q", query), zap.Error(err))
		return nil, NewHTTPError(http.StatusBadGateway, "search failed")
	}
	return results, nil
}
