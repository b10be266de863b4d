package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookstore/internal/domain/model"
	infraRepo "bookstore/internal/infra/repository"
	repo "bookstore/internal/repository"
)

func seedReview(t *testing.T, db *gorm.DB, userID int64, bookID int64, rating int, status model.ReviewStatus) model.Review {
	t.Helper()

	r := model.Review{
		UserID:  userID,
		BookID:  bookID,
		Content: "fine",
		Rating:  rating,
		Status:  status,
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}

// 同一(user, book)のレビューは1件だけ
func TestReviewGorm_OneReviewPerUserAndBook(t *testing.T) {
	db := openTestDB(t)

	seedReview(t, db, 1, 10, 5, model.ReviewStatusPending)

	dup := model.Review{UserID: 1, BookID: 10, Content: "again", Rating: 3, Status: model.ReviewStatusPending}
	assert.Error(t, db.Create(&dup).Error)
}

// 投票は行の作成とカウンタ加算がセット。二重投票はunique制約で失敗する。
func TestReviewGorm_AddVote(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewReviewGormRepository(db)
	ctx := context.Background()

	review := seedReview(t, db, 1, 10, 5, model.ReviewStatusApproved)

	assert.NoError(t, r.AddVote(ctx, model.ReviewVote{UserID: 2, ReviewID: review.ID, IsHelpful: true}))
	assert.NoError(t, r.AddVote(ctx, model.ReviewVote{UserID: 3, ReviewID: review.ID, IsHelpful: false}))

	got, err := r.FindByID(ctx, review.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), got.HelpfulCount)
	assert.Equal(t, int64(1), got.UnhelpfulCount)

	// 同じユーザーの2票目は失敗し、カウンタも増えない
	assert.Error(t, r.AddVote(ctx, model.ReviewVote{UserID: 2, ReviewID: review.ID, IsHelpful: true}))

	got, err = r.FindByID(ctx, review.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), got.HelpfulCount)

	voted, err := r.HasVoted(ctx, 2, review.ID)
	assert.NoError(t, err)
	assert.True(t, voted)
}

// 平均は承認済みレビューだけから計算する
func TestReviewGorm_ApprovedRating(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewReviewGormRepository(db)
	ctx := context.Background()

	seedReview(t, db, 1, 10, 5, model.ReviewStatusApproved)
	seedReview(t, db, 2, 10, 3, model.ReviewStatusApproved)
	seedReview(t, db, 3, 10, 1, model.ReviewStatusPending)

	avg, count, err := r.ApprovedRating(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.InDelta(t, 4.0, avg, 0.001)

	// レビューが無い書籍は(0, 0)
	avg, count, err = r.ApprovedRating(ctx, 99)
	assert.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, avg)
}

func TestReviewGorm_List_FiltersByStatus(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewReviewGormRepository(db)
	ctx := context.Background()

	seedReview(t, db, 1, 10, 5, model.ReviewStatusApproved)
	seedReview(t, db, 2, 10, 2, model.ReviewStatusRejected)

	items, total, err := r.List(ctx, repo.ReviewListFilter{
		BookID: 10,
		Status: string(model.ReviewStatusApproved),
		Page:   1,
		Limit:  20,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, model.ReviewStatusApproved, items[0].Status)
}

func TestReviewGorm_UpdateStatus_UnknownIDIsNotFound(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewReviewGormRepository(db)

	err := r.UpdateStatus(context.Background(), 9999, model.ReviewStatusApproved)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// 同一(user, book)のwishlist行は1行だけ
func TestWishlistGorm_OneRowPerUserAndBook(t *testing.T) {
	db := openTestDB(t)

	first := model.Wishlist{UserID: 1, BookID: 10}
	require.NoError(t, db.Create(&first).Error)

	dup := model.Wishlist{UserID: 1, BookID: 10}
	assert.Error(t, db.Create(&dup).Error)
}

func TestWishlistGorm_DeleteByUserAndBook(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewWishlistGormRepository(db)
	ctx := context.Background()

	_, err := r.Add(ctx, model.Wishlist{UserID: 1, BookID: 10})
	require.NoError(t, err)

	assert.NoError(t, r.DeleteByUserAndBook(ctx, 1, 10))

	// 2回目は404
	assert.ErrorIs(t, r.DeleteByUserAndBook(ctx, 1, 10), repo.ErrNotFound)

	// 他人の行は消せない
	_, err = r.Add(ctx, model.Wishlist{UserID: 2, BookID: 10})
	require.NoError(t, err)
	assert.ErrorIs(t, r.DeleteByUserAndBook(ctx, 1, 10), repo.ErrNotFound)
}

func TestContactMessageGorm_ListFiltersByStatus(t *testing.T) {
	db := openTestDB(t)
	r := infraRepo.NewContactMessageGormRepository(db)
	ctx := context.Background()

	_, err := r.Create(ctx, model.ContactMessage{
		Name: "a", Email: "a@example.com", Subject: "s1", Message: "m", Status: model.ContactMessageStatusNew,
	})
	require.NoError(t, err)
	second, err := r.Create(ctx, model.ContactMessage{
		Name: "b", Email: "b@example.com", Subject: "s2", Message: "m", Status: model.ContactMessageStatusNew,
	})
	require.NoError(t, err)

	require.NoError(t, r.UpdateStatus(ctx, second.ID, model.ContactMessageStatusRead))

	msgs, total, err := r.List(ctx, repo.ContactMessageListFilter{Status: "new", Page: 1, Limit: 20})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, msgs, 1)
	assert.Equal(t, "s1", msgs[0].Subject)
}
