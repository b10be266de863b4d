package usecase

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

// ContactUsecase は問い合わせフォーム。投稿は未ログインでも可。
// 一覧と既読/返信済み管理は管理者のみ。
type ContactUsecase struct {
	contactRepo repo.ContactMessageRepository
	logger      *zap.Logger
}

func NewContactUsecase(contactRepo repo.ContactMessageRepository, logger *zap.Logger) *ContactUsecase {
	return &ContactUsecase{
		contactRepo: contactRepo,
		logger:      logger,
	}
}

type ContactMessageInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContactMessageResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type ContactMessageListResponse struct {
	Messages []ContactMessageResponse `json:"messages"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	Limit    int                      `json:"limit"`
}

func toContactMessageResponse(m model.ContactMessage) ContactMessageResponse {
	return ContactMessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (in ContactMessageInput) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"subject", in.Subject},
		{"message", in.Message},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return NewHTTPError(http.StatusBadRequest, f.name+" is required")
		}
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	return nil
}

// SubmitMessage は問い合わせの投稿。statusはnewで保存する。
func (u *ContactUsecase) SubmitMessage(ctx context.Context, in ContactMessageInput) (ContactMessageResponse, error) {
	if err := in.validate(); err != nil {
		return ContactMessageResponse{}, err
	}

	created, err := u.contactRepo.Create(ctx, model.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
		Status:  model.ContactMessageStatusNew,
	})
	if err != nil {
		return ContactMessageResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.logger.Info("contact message received",
		zap.Int64("id", created.ID), zap.String("subject", created.Subject))
	return toContactMessageResponse(created), nil
}

// ListMessages は管理者向けの一覧（status絞り込み付き）。
func (u *ContactUsecase) ListMessages(ctx context.Context, status string, page int, limit int) (ContactMessageListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if status != "" && !model.ContactMessageStatus(status).Valid() {
		return ContactMessageListResponse{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	msgs, total, err := u.contactRepo.List(ctx, repo.ContactMessageListFilter{
		Status: status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return ContactMessageListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resp := ContactMessageListResponse{
		Messages: make([]ContactMessageResponse, 0, len(msgs)),
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toContactMessageResponse(m))
	}
	return resp, nil
}

// UpdateMessageStatus は既読/返信済みへの変更。
func (u *ContactUsecase) UpdateMessageStatus(ctx context.Context, msgID int64, status string) error {
	if msgID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	s := model.ContactMessageStatus(status)
	if !s.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	err := u.contactRepo.UpdateStatus(ctx, msgID, s)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
