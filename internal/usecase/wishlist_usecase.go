package usecase

import (
	"context"
	"net/http"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

// WishlistUsecase はほしい物リスト。同一書籍は1行だけ。
type WishlistUsecase struct {
	wishlistRepo repo.WishlistRepository
	bookRepo     repo.BookRepository
}

func NewWishlistUsecase(wishlistRepo repo.WishlistRepository, bookRepo repo.BookRepository) *WishlistUsecase {
	return &WishlistUsecase{
		wishlistRepo: wishlistRepo,
		bookRepo:     bookRepo,
	}
}

type AddToWishlistInput struct {
	BookID int64  `json:"book_id"`
	Notes  string `json:"notes"`
}

type WishlistItemResponse struct {
	ID      int64  `json:"id"`
	BookID  int64  `json:"book_id"`
	Title   string `json:"title"`
	Price   int64  `json:"price"`
	Notes   string `json:"notes,omitempty"`
	AddedAt string `json:"added_at"`
}

type WishlistResponse struct {
	Items []WishlistItemResponse `json:"items"`
	Count int                    `json:"count"`
}

// GetWishlist は一覧。書籍のタイトルと現在価格を添える。
// カタログから消えた書籍の行はタイトル無しで返す（リンク切れでも一覧は壊さない）。
func (u *WishlistUsecase) GetWishlist(ctx context.Context, userID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.wishlistRepo.ListByUserID(ctx, userID)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resp := WishlistResponse{Items: make([]WishlistItemResponse, 0, len(items))}
	for _, item := range items {
		entry := WishlistItemResponse{
			ID:      item.ID,
			BookID:  item.BookID,
			Notes:   item.Notes,
			AddedAt: item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if b, err := u.bookRepo.FindByID(ctx, item.BookID); err == nil {
			entry.Title = b.Title
			entry.Price = b.Price
		}
		resp.Items = append(resp.Items, entry)
	}
	resp.Count = len(resp.Items)
	return resp, nil
}

func (u *WishlistUsecase) AddToWishlist(ctx context.Context, userID int64, in AddToWishlistInput) (WishlistItemResponse, error) {
	if userID <= 0 {
		return WishlistItemResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.BookID <= 0 {
		return WishlistItemResponse{}, NewHTTPError(http.StatusBadRequest, "book_id is required")
	}

	b, err := u.bookRepo.FindByID(ctx, in.BookID)
	if err == repo.ErrNotFound {
		return WishlistItemResponse{}, NewHTTPError(http.StatusNotFound, "book not found")
	}
	if err != nil {
		return WishlistItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	exists, err := u.wishlistRepo.ExistsByUserAndBook(ctx, userID, in.BookID)
	if err != nil {
		return WishlistItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return WishlistItemResponse{}, NewHTTPError(http.StatusConflict, "already in wishlist")
	}

	created, err := u.wishlistRepo.Add(ctx, model.Wishlist{
		UserID: userID,
		BookID: in.BookID,
		Notes:  in.Notes,
	})
	if err != nil {
		return WishlistItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return WishlistItemResponse{
		ID:      created.ID,
		BookID:  created.BookID,
		Title:   b.Title,
		Price:   b.Price,
		Notes:   created.Notes,
		AddedAt: created.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

func (u *WishlistUsecase) RemoveFromWishlist(ctx context.Context, userID int64, bookID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.wishlistRepo.DeleteByUserAndBook(ctx, userID, bookID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
