package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

// ReviewUsecase は書籍レビューの投稿・閲覧・投票と管理者のモデレーション。
// 投稿直後はpendingで、承認されたものだけ一覧に出す。
type ReviewUsecase struct {
	reviewRepo repo.ReviewRepository
	bookRepo   repo.BookRepository
	orderRepo  repo.OrderRepository
	auditRepo  repo.AuditLogRepository
	logger     *zap.Logger
}

func NewReviewUsecase(
	reviewRepo repo.ReviewRepository,
	bookRepo repo.BookRepository,
	orderRepo repo.OrderRepository,
	auditRepo repo.AuditLogRepository,
	logger *zap.Logger,
) *ReviewUsecase {
	return &ReviewUsecase{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
		orderRepo:  orderRepo,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

type CreateReviewInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

type ReviewResponse struct {
	ID               int64  `json:"id"`
	BookID           int64  `json:"book_id"`
	UserID           int64  `json:"user_id"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	Rating           int    `json:"rating"`
	VerifiedPurchase bool   `json:"verified_purchase"`
	HelpfulCount     int64  `json:"helpful_count"`
	UnhelpfulCount   int64  `json:"unhelpful_count"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

type ReviewListResponse struct {
	Reviews       []ReviewResponse `json:"reviews"`
	Total         int64            `json:"total"`
	AverageRating float64          `json:"average_rating"`
	RatingCount   int64            `json:"rating_count"`
	Page          int              `json:"page"`
	Limit         int              `json:"limit"`
}

func toReviewResponse(r model.Review) ReviewResponse {
	return ReviewResponse{
		ID:               r.ID,
		BookID:           r.BookID,
		UserID:           r.UserID,
		Title:            r.Title,
		Content:          r.Content,
		Rating:           r.Rating,
		VerifiedPurchase: r.VerifiedPurchase,
		HelpfulCount:     r.HelpfulCount,
		UnhelpfulCount:   r.UnhelpfulCount,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateReview はレビューの投稿。1冊につき1人1件。
// verified_purchaseは支払い済み注文の有無から投稿時点で確定する。
func (u *ReviewUsecase) CreateReview(ctx context.Context, userID int64, bookID int64, in CreateReviewInput) (ReviewResponse, error) {
	if userID <= 0 {
		return ReviewResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return ReviewResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return ReviewResponse{}, NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(in.Content) == "" {
		return ReviewResponse{}, NewHTTPError(http.StatusBadRequest, "content is required")
	}

	if _, err := u.bookRepo.FindByID(ctx, bookID); err == repo.ErrNotFound {
		return ReviewResponse{}, NewHTTPError(http.StatusNotFound, "book not found")
	} else if err != nil {
		return ReviewResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	exists, err := u.reviewRepo.ExistsByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return ReviewResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return ReviewResponse{}, NewHTTPError(http.StatusConflict, "you have already reviewed this book")
	}

	verified, err := u.orderRepo.HasPurchased(ctx, userID, bookID)
	if err != nil {
		// 判定できなくても投稿は通す（unverified扱い）
		u.logger.Warn("verified purchase check failed",
			zap.Int64("user_id", userID), zap.Int64("book_id", bookID), zap.Error(err))
		verified = false
	}

	created, err := u.reviewRepo.Create(ctx, model.Review{
		UserID:           userID,
		BookID:           bookID,
		Title:            strings.TrimSpace(in.Title),
		Content:          strings.TrimSpace(in.Content),
		Rating:           in.Rating,
		VerifiedPurchase: verified,
		Status:           model.ReviewStatusPending,
	})
	if err != nil {
		return ReviewResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toReviewResponse(created), nil
}

// ListBookReviews は承認済みレビューの一覧と平均評価。
func (u *ReviewUsecase) ListBookReviews(ctx context.Context, bookID int64, page int, limit int) (ReviewListResponse, error) {
	if bookID <= 0 {
		return ReviewListResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	reviews, total, err := u.reviewRepo.List(ctx, repo.ReviewListFilter{
		BookID: bookID,
		Status: string(model.ReviewStatusApproved),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return ReviewListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	avg, count, err := u.reviewRepo.ApprovedRating(ctx, bookID)
	if err != nil {
		return ReviewListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resp := ReviewListResponse{
		Reviews:       make([]ReviewResponse, 0, len(reviews)),
		Total:         total,
		AverageRating: avg,
		RatingCount:   count,
		Page:          page,
		Limit:         limit,
	}
	for _, r := range reviews {
		resp.Reviews = append(resp.Reviews, toReviewResponse(r))
	}
	return resp, nil
}

// VoteReview はhelpful/unhelpful投票。1人1レビュー1票、自分のレビューには投票不可。
func (u *ReviewUsecase) VoteReview(ctx context.Context, userID int64, reviewID int64, helpful bool) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if reviewID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	review, err := u.reviewRepo.FindByID(ctx, reviewID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "review not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if review.UserID == userID {
		return NewHTTPError(http.StatusBadRequest, "cannot vote on your own review")
	}

	voted, err := u.reviewRepo.HasVoted(ctx, userID, reviewID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if voted {
		return NewHTTPError(http.StatusConflict, "you have already voted on this review")
	}

	if err := u.reviewRepo.AddVote(ctx, model.ReviewVote{
		UserID:    userID,
		ReviewID:  reviewID,
		IsHelpful: helpful,
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// ModerateReview は管理者による承認/却下。監査ログを残す。
func (u *ReviewUsecase) ModerateReview(ctx context.Context, actorUserID int64, reviewID int64, status string) (ReviewResponse, error) {
	newStatus := model.ReviewStatus(status)
	if !newStatus.ValidModeration() {
		return ReviewResponse{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	review, err := u.reviewRepo.FindByID(ctx, reviewID)
	if err == repo.ErrNotFound {
		return ReviewResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ReviewResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.reviewRepo.UpdateStatus(ctx, reviewID, newStatus); err != nil {
		return ReviewResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.recordAudit(ctx, actorUserID, review, newStatus)

	review.Status = newStatus
	return toReviewResponse(review), nil
}

func (u *ReviewUsecase) recordAudit(ctx context.Context, actorUserID int64, review model.Review, newStatus model.ReviewStatus) {
	before, _ := json.Marshal(map[string]string{"status": string(review.Status)})
	after, _ := json.Marshal(map[string]string{"status": string(newStatus)})

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionModerateReview,
		ResourceType: model.AuditResourceReview,
		ResourceID:   review.ID,
		BeforeJSON:   string(before),
		AfterJSON:    string(after),
	}); err != nil {
		u.logger.Warn("audit log write failed",
			zap.Int64("review_id", review.ID), zap.Error(err))
	}
}
