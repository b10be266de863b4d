package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type ReviewListFilter struct {
	BookID int64
	Status string
	Page   int
	Limit  int
}

type ReviewRepository interface {
	Create(ctx context.Context, review model.Review) (model.Review, error)
	FindByID(ctx context.Context, reviewID int64) (model.Review, error)
	List(ctx context.Context, f ReviewListFilter) ([]model.Review, int64, error)
	// 同一ユーザーが同一書籍を二重レビューしていないかの事前チェック。
	// DB側の(user_id, book_id) unique indexが最後の砦。
	ExistsByUserAndBook(ctx context.Context, userID int64, bookID int64) (bool, error)
	UpdateStatus(ctx context.Context, reviewID int64, status model.ReviewStatus) error
	// 承認済みレビューの平均評価と件数
	ApprovedRating(ctx context.Context, bookID int64) (avg float64, count int64, err error)

	// 投票の登録とhelpful/unhelpfulカウンタの加算を1トランザクションで行う。
	AddVote(ctx context.Context, vote model.ReviewVote) error
	HasVoted(ctx context.Context, userID int64, reviewID int64) (bool, error)
}
