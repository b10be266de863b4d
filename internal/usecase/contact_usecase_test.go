package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"bookstore/internal/domain/model"
	"bookstore/internal/usecase"
)

func validContactInput() usecase.ContactMessageInput {
	return usecase.ContactMessageInput{
		Name:    "Jordan Reed",
		Email:   "jordan@example.com",
		Subject: "Order question",
		Message: "Where is my order?",
	}
}

func TestContactUsecase_Submit_MissingField(t *testing.T) {
	contactRepo := new(ContactRepoMock)
	uc := usecase.NewContactUsecase(contactRepo, zap.NewNop())

	in := validContactInput()
	in.Subject = ""

	_, err := uc.SubmitMessage(context.Background(), in)
	assertHTTPError(t, err, 400, "subject is required")
	contactRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestContactUsecase_Submit_InvalidEmail(t *testing.T) {
	contactRepo := new(ContactRepoMock)
	uc := usecase.NewContactUsecase(contactRepo, zap.NewNop())

	in := validContactInput()
	in.Email = "not-an-email"

	_, err := uc.SubmitMessage(context.Background(), in)
	assertHTTPError(t, err, 400, "invalid email")
}

// 投稿はstatus=newで保存される
func TestContactUsecase_Submit_Success(t *testing.T) {
	contactRepo := new(ContactRepoMock)
	uc := usecase.NewContactUsecase(contactRepo, zap.NewNop())

	var created model.ContactMessage
	contactRepo.On("Create", mock.Anything, mock.AnythingOfType("model.ContactMessage")).
		Run(func(args mock.Arguments) { created = args.Get(1).(model.ContactMessage) }).
		Return(model.ContactMessage{ID: 1, Status: model.ContactMessageStatusNew}, nil)

	out, err := uc.SubmitMessage(context.Background(), validContactInput())
	assert.NoError(t, err)
	assert.Equal(t, model.ContactMessageStatusNew, created.Status)
	assert.Equal(t, "new", out.Status)
}

func TestContactUsecase_List_InvalidStatusFilter(t *testing.T) {
	contactRepo := new(ContactRepoMock)
	uc := usecase.NewContactUsecase(contactRepo, zap.NewNop())

	_, err := uc.ListMessages(context.Background(), "spam", 1, 20)
	assertHTTPError(t, err, 400, "invalid status")
}

func TestContactUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	contactRepo := new(ContactRepoMock)
	uc := usecase.NewContactUsecase(contactRepo, zap.NewNop())

	err := uc.UpdateMessageStatus(context.Background(), 1, "archived")
	assertHTTPError(t, err, 400, "invalid status")
	contactRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestContactUsecase_UpdateStatus_Success(t *testing.T) {
	contactRepo := new(ContactRepoMock)
	uc := usecase.NewContactUsecase(contactRepo, zap.NewNop())

	contactRepo.On("UpdateStatus", mock.Anything, int64(1), model.ContactMessageStatusRead).Return(nil)

	err := uc.UpdateMessageStatus(context.Background(), 1, "read")
	assert.NoError(t, err)
}
