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

type paymentFixture struct {
	cartRepo      *CartRepoMock
	cartItemRepo  *CartItemRepoMock
	orderRepo     *OrderRepoMock
	orderItemRepo *OrderItemRepoMock
	userRepo      *UserRepoMock
	gateway       *GatewayMock
	mailer        *MailerMock
	uc            *usecase.PaymentUsecase
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		cartRepo:      new(CartRepoMock),
		cartItemRepo:  new(CartItemRepoMock),
		orderRepo:     new(OrderRepoMock),
		orderItemRepo: new(OrderItemRepoMock),
		userRepo:      new(UserRepoMock),
		gateway:       new(GatewayMock),
		mailer:        new(MailerMock),
	}

	tx := &TxManagerFake{repos: &TxReposFake{
		orders:     f.orderRepo,
		orderItems: f.orderItemRepo,
		carts:      f.cartRepo,
		cartItems:  f.cartItemRepo,
		books:      new(BookRepoMock),
	}}

	f.uc = usecase.NewPaymentUsecase(tx, f.orderRepo, f.orderItemRepo, f.userRepo, f.gateway, f.mailer, nil, zap.NewNop())
	return f
}

func pendingOrder() model.Order {
	return model.Order{
		ID:            100,
		UserID:        1,
		OrderNumber:   "ORD-20250314-AB12CD34",
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Total:         4919,
		PaymentMethod: "card",
		TransactionID: "pi_123",
	}
}

func (f *paymentFixture) expectWinnerSideEffects() {
	user := model.User{ID: 1, Email: "jordan@example.com"}
	f.cartRepo.On("FindByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	f.cartRepo.On("Clear", mock.Anything, int64(5)).Return(nil)
	f.userRepo.On("FindByID", mock.Anything, int64(1)).Return(&user, nil)
	f.orderItemRepo.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{
		{ID: 1, OrderID: 100, BookID: 10, TitleSnapshot: "A", UnitPriceSnapshot: 2000, Quantity: 2},
	}, nil)
	f.mailer.On("SendOrderConfirmation", mock.Anything, mock.Anything, user).Return(nil)
	f.mailer.On("SendPaymentReceipt", mock.Anything, user).Return(nil)
}

// 確認callの成功側：processorのステータスを取り直して反映する
func TestPaymentUsecase_ConfirmPayment_Succeeded(t *testing.T) {
	f := newPaymentFixture()

	f.orderRepo.On("FindByID", mock.Anything, int64(100)).Return(pendingOrder(), nil)
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_123").
		Return(usecase.PaymentIntent{ID: "pi_123", Status: "succeeded"}, nil)
	f.orderRepo.On("MarkPaymentCompleted", mock.Anything, int64(100)).Return(true, nil)
	f.expectWinnerSideEffects()

	err := f.uc.ConfirmPayment(context.Background(), 1, usecase.ConfirmPaymentInput{
		PaymentIntentID: "pi_123",
		OrderID:         100,
	})
	assert.NoError(t, err)

	f.cartRepo.AssertNumberOfCalls(t, "Clear", 1)
	f.mailer.AssertNumberOfCalls(t, "SendOrderConfirmation", 1)
	f.mailer.AssertNumberOfCalls(t, "SendPaymentReceipt", 1)
}

// 2回目の適用（確認call→webhookの順でも逆でも）は副作用なしのno-op
func TestPaymentUsecase_DoubleResolution_SideEffectsOnce(t *testing.T) {
	f := newPaymentFixture()

	f.orderRepo.On("FindByID", mock.Anything, int64(100)).Return(pendingOrder(), nil)
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_123").
		Return(usecase.PaymentIntent{ID: "pi_123", Status: "succeeded"}, nil)
	f.gateway.On("VerifyWebhook", mock.Anything, "sig").Return(usecase.WebhookEvent{
		Type:     "payment_intent.succeeded",
		IntentID: "pi_123",
		Metadata: map[string]string{"order_id": "100"},
	}, nil)

	// 勝者は最初の1回だけ
	f.orderRepo.On("MarkPaymentCompleted", mock.Anything, int64(100)).Return(true, nil).Once()
	f.orderRepo.On("MarkPaymentCompleted", mock.Anything, int64(100)).Return(false, nil)
	f.expectWinnerSideEffects()

	err := f.uc.ConfirmPayment(context.Background(), 1, usecase.ConfirmPaymentInput{
		PaymentIntentID: "pi_123",
		OrderID:         100,
	})
	assert.NoError(t, err)

	err = f.uc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)

	f.cartRepo.AssertNumberOfCalls(t, "Clear", 1)
	f.mailer.AssertNumberOfCalls(t, "SendOrderConfirmation", 1)
	f.mailer.AssertNumberOfCalls(t, "SendPaymentReceipt", 1)
}

// processing中間状態は副作用なし
func TestPaymentUsecase_ConfirmPayment_Processing(t *testing.T) {
	f := newPaymentFixture()

	f.orderRepo.On("FindByID", mock.Anything, int64(100)).Return(pendingOrder(), nil)
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_123").
		Return(usecase.PaymentIntent{ID: "pi_123", Status: "processing"}, nil)
	f.orderRepo.On("MarkPaymentProcessing", mock.Anything, int64(100)).Return(nil)

	err := f.uc.ConfirmPayment(context.Background(), 1, usecase.ConfirmPaymentInput{
		PaymentIntentID: "pi_123",
		OrderID:         100,
	})
	assert.NoError(t, err)

	f.cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	f.mailer.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything, mock.Anything)
}

// succeededでもprocessingでもないステータスはfailed扱い
func TestPaymentUsecase_ConfirmPayment_OtherStatusIsFailure(t *testing.T) {
	f := newPaymentFixture()

	f.orderRepo.On("FindByID", mock.Anything, int64(100)).Return(pendingOrder(), nil)
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_123").
		Return(usecase.PaymentIntent{ID: "pi_123", Status: "requires_payment_method"}, nil)
	f.orderRepo.On("MarkPaymentFailed", mock.Anything, int64(100)).Return(true, nil)

	err := f.uc.ConfirmPayment(context.Background(), 1, usecase.ConfirmPaymentInput{
		PaymentIntentID: "pi_123",
		OrderID:         100,
	})
	assert.NoError(t, err)

	f.orderRepo.AssertCalled(t, "MarkPaymentFailed", mock.Anything, int64(100))
	f.cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// intentが注文のものでなければ拒否
func TestPaymentUsecase_ConfirmPayment_IntentMismatch(t *testing.T) {
	f := newPaymentFixture()

	f.orderRepo.On("FindByID", mock.Anything, int64(100)).Return(pendingOrder(), nil)

	err := f.uc.ConfirmPayment(context.Background(), 1, usecase.ConfirmPaymentInput{
		PaymentIntentID: "pi_other",
		OrderID:         100,
	})
	assertHTTPError(t, err, 400, "payment intent does not match order")
	f.gateway.AssertNotCalled(t, "RetrieveIntent", mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "MarkPaymentCompleted", mock.Anything, mock.Anything)
}

// カード以外の注文は確認できない。
// 自前のsucceededなintentを持ち込んでも未払い注文をcompletedにはできない。
func TestPaymentUsecase_ConfirmPayment_NonCardOrderRejected(t *testing.T) {
	f := newPaymentFixture()

	o := pendingOrder()
	o.PaymentMethod = "cod"
	o.TransactionID = ""
	f.orderRepo.On("FindByID", mock.Anything, int64(100)).Return(o, nil)
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_unrelated").
		Return(usecase.PaymentIntent{ID: "pi_unrelated", Status: "succeeded"}, nil)

	err := f.uc.ConfirmPayment(context.Background(), 1, usecase.ConfirmPaymentInput{
		PaymentIntentID: "pi_unrelated",
		OrderID:         100,
	})
	assertHTTPError(t, err, 400, "order has no pending card payment")
	f.orderRepo.AssertNotCalled(t, "MarkPaymentCompleted", mock.Anything, mock.Anything)
	f.cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	f.mailer.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything, mock.Anything)
}

// intent未発行（transaction_id空）のカード注文も確認できない
func TestPaymentUsecase_ConfirmPayment_NoTransactionIDRejected(t *testing.T) {
	f := newPaymentFixture()

	o := pendingOrder()
	o.TransactionID = ""
	f.orderRepo.On("FindByID", mock.Anything, int64(100)).Return(o, nil)

	err := f.uc.ConfirmPayment(context.Background(), 1, usecase.ConfirmPaymentInput{
		PaymentIntentID: "pi_unrelated",
		OrderID:         100,
	})
	assertHTTPError(t, err, 400, "order has no pending card payment")
	f.orderRepo.AssertNotCalled(t, "MarkPaymentCompleted", mock.Anything, mock.Anything)
}

// 他人の注文は存在しない扱い
func TestPaymentUsecase_ConfirmPayment_WrongUser(t *testing.T) {
	f := newPaymentFixture()

	f.orderRepo.On("FindByID", mock.Anything, int64(100)).Return(pendingOrder(), nil)

	err := f.uc.ConfirmPayment(context.Background(), 2, usecase.ConfirmPaymentInput{
		PaymentIntentID: "pi_123",
		OrderID:         100,
	})
	assertHTTPError(t, err, 404, "order not found")
	f.gateway.AssertNotCalled(t, "RetrieveIntent", mock.Anything, mock.Anything)
}

// 署名不正は拒否して状態を変えない
func TestPaymentUsecase_HandleWebhook_InvalidSignature(t *testing.T) {
	f := newPaymentFixture()

	f.gateway.On("VerifyWebhook", mock.Anything, "bad").
		Return(usecase.WebhookEvent{}, usecase.ErrInvalidSignature)

	err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "bad")
	assert.ErrorIs(t, err, usecase.ErrInvalidSignature)

	f.orderRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "MarkPaymentCompleted", mock.Anything, mock.Anything)
}

// metadataのorder_idが無い・壊れているイベントは黙って無視
func TestPaymentUsecase_HandleWebhook_MalformedMetadataIgnored(t *testing.T) {
	f := newPaymentFixture()

	f.gateway.On("VerifyWebhook", mock.Anything, "sig").Return(usecase.WebhookEvent{
		Type:     "payment_intent.succeeded",
		IntentID: "pi_9",
		Metadata: map[string]string{"order_id": "not-a-number"},
	}, nil).Once()

	err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)

	f.gateway.On("VerifyWebhook", mock.Anything, "sig").Return(usecase.WebhookEvent{
		Type:     "payment_intent.succeeded",
		IntentID: "pi_9",
		Metadata: map[string]string{},
	}, nil).Once()

	err = f.uc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)

	f.orderRepo.AssertNotCalled(t, "MarkPaymentCompleted", mock.Anything, mock.Anything)
}

// 関係ないイベントタイプは受理して無視
func TestPaymentUsecase_HandleWebhook_UnrelatedEventIgnored(t *testing.T) {
	f := newPaymentFixture()

	f.gateway.On("VerifyWebhook", mock.Anything, "sig").Return(usecase.WebhookEvent{
		Type:     "payment_intent.created",
		IntentID: "pi_9",
		Metadata: map[string]string{"order_id": "100"},
	}, nil)

	err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)
	f.orderRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// webhookの失敗イベントは注文をcancelledへ
func TestPaymentUsecase_HandleWebhook_PaymentFailed(t *testing.T) {
	f := newPaymentFixture()

	f.gateway.On("VerifyWebhook", mock.Anything, "sig").Return(usecase.WebhookEvent{
		Type:     "payment_intent.payment_failed",
		IntentID: "pi_123",
		Metadata: map[string]string{"order_id": "100"},
	}, nil)
	f.orderRepo.On("FindByID", mock.Anything, int64(100)).Return(pendingOrder(), nil)
	f.orderRepo.On("MarkPaymentFailed", mock.Anything, int64(100)).Return(true, nil)

	err := f.uc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	assert.NoError(t, err)
	f.orderRepo.AssertCalled(t, "MarkPaymentFailed", mock.Anything, int64(100))
}

// メール失敗は支払い確定を失敗させない
func TestPaymentUsecase_CompletionEmailFailureIsSwallowed(t *testing.T) {
	f := newPaymentFixture()

	user := model.User{ID: 1}
	f.orderRepo.On("FindByID", mock.Anything, int64(100)).Return(pendingOrder(), nil)
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_123").
		Return(usecase.PaymentIntent{ID: "pi_123", Status: "succeeded"}, nil)
	f.orderRepo.On("MarkPaymentCompleted", mock.Anything, int64(100)).Return(true, nil)
	f.cartRepo.On("FindByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	f.cartRepo.On("Clear", mock.Anything, int64(5)).Return(nil)
	f.userRepo.On("FindByID", mock.Anything, int64(1)).Return(&user, nil)
	f.orderItemRepo.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{}, nil)
	f.mailer.On("SendOrderConfirmation", mock.Anything, mock.Anything, user).Return(assert.AnError)
	f.mailer.On("SendPaymentReceipt", mock.Anything, user).Return(assert.AnError)

	err := f.uc.ConfirmPayment(context.Background(), 1, usecase.ConfirmPaymentInput{
		PaymentIntentID: "pi_123",
		OrderID:         100,
	})
	assert.NoError(t, err)
}
