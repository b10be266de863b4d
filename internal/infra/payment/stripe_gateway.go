package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bookstore/internal/usecase"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripeをusecase.PaymentGatewayとして使うためのアダプタ。
// HTTPクライアントにタイムアウトを入れて、processor側が遅くても
// リクエストを抱え込まないようにする。
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey string, webhookSecret string, timeout time.Duration) *StripeGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	backends := stripe.NewBackends(&http.Client{Timeout: timeout})

	api := &client.API{}
	api.Init(secretKey, backends)

	return &StripeGateway{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, in usecase.CreateIntentInput) (usecase.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:       stripe.Params{Context: ctx},
		Amount:       stripe.Int64(in.AmountCents),
		Currency:     stripe.String(in.Currency),
		Description:  stripe.String(in.Description),
		ReceiptEmail: stripe.String(in.ReceiptEmail),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return usecase.PaymentIntent{}, err
	}

	return toIntent(pi), nil
}

// 支払い状態はここで取り直したものだけを信用する。
func (g *StripeGateway) RetrieveIntent(ctx context.Context, id string) (usecase.PaymentIntent, error) {
	pi, err := g.api.PaymentIntents.Get(id, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return usecase.PaymentIntent{}, err
	}

	return toIntent(pi), nil
}

// 署名を共有シークレットで検証する。検証できないイベントは処理しない。
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (usecase.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return usecase.WebhookEvent{}, usecase.ErrInvalidSignature
	}

	// intent系イベントだけ中身を読む。署名が通った他のイベントは
	// タイプだけ返して上位に無視させる（拒否するとprocessorが再送し続ける）。
	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		return usecase.WebhookEvent{Type: string(event.Type)}, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return usecase.WebhookEvent{}, usecase.ErrInvalidPayload
	}
	if pi.ID == "" {
		return usecase.WebhookEvent{}, usecase.ErrInvalidPayload
	}

	return usecase.WebhookEvent{
		Type:     string(event.Type),
		IntentID: pi.ID,
		Metadata: pi.Metadata,
	}, nil
}

func toIntent(pi *stripe.PaymentIntent) usecase.PaymentIntent {
	if pi == nil {
		return usecase.PaymentIntent{}
	}
	return usecase.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}
