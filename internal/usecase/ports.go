package usecase

import (
	"context"
	"errors"
	"time"

	"bookstore/internal/domain/model"
)

// 現在時刻の差し替え口。
type Clock interface {
	Now() time.Time
}

// ID生成の差し替え口。
type IDGenerator interface {
	NewID() string
}

// webhook検証の失敗。どちらも処理せずに拒否する。
var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
)

// processor側のインテント。Statusはprocessorの語彙そのまま
// （succeeded / processing / それ以外は失敗扱い）。
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Metadata     map[string]string
}

type CreateIntentInput struct {
	AmountCents  int64
	Currency     string
	Description  string
	ReceiptEmail string
	Metadata     map[string]string
}

// 署名検証済みのwebhookイベント。
type WebhookEvent struct {
	Type     string
	IntentID string
	Metadata map[string]string
}

// 外部決済プロセッサの約束。
// intentを作る・状態を取り直す・webhook署名を検証する、の3つだけ。
type PaymentGateway interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (PaymentIntent, error)
	RetrieveIntent(ctx context.Context, id string) (PaymentIntent, error)
	VerifyWebhook(payload []byte, signature string) (WebhookEvent, error)
}

// トランザクションメールの約束。
// 失敗しても注文・支払いの処理は失敗させない（ログだけ残す）。
type NotificationDispatcher interface {
	SendOrderConfirmation(order model.Order, items []model.OrderItem, user model.User) error
	SendPaymentReceipt(order model.Order, user model.User) error
	SendShippingNotice(order model.Order, user model.User, trackingNumber string) error
}

// 注文イベントの発行。未設定（nil）なら発行しない。
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, orderID int64, orderNumber string, userID int64, totalCents int64) error
}
