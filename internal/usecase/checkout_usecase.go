package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"bookstore/internal/domain/model"
	"bookstore/internal/infra/events"
	"bookstore/internal/metrics"
	repo "bookstore/internal/repository"
)

// 金額計算の定数。すべてセント単位。
const (
	taxRatePercent        int64 = 8
	shippingFlatCents     int64 = 599
	freeShippingThreshold int64 = 5000
)

// 消費税は四捨五入（(subtotal*8+50)/100）。
func taxFor(subtotal int64) int64 {
	return (subtotal*taxRatePercent + 50) / 100
}

func shippingFor(subtotal int64) int64 {
	if subtotal >= freeShippingThreshold {
		return 0
	}
	return shippingFlatCents
}

// CheckoutUsecase はカートから注文スナップショットを作り、
// カード払いならprocessor側のintentまで開く。
// カートはここでは消さない（支払い確定時に消す）。
type CheckoutUsecase struct {
	tx       repo.TransactionManager
	userRepo repo.UserRepository
	gateway  PaymentGateway
	mailer   NotificationDispatcher
	events   EventPublisher
	ids      IDGenerator
	clock    Clock
	logger   *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	userRepo repo.UserRepository,
	gateway PaymentGateway,
	mailer NotificationDispatcher,
	events EventPublisher,
	ids IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:       tx,
		userRepo: userRepo,
		gateway:  gateway,
		mailer:   mailer,
		events:   events,
		ids:      ids,
		clock:    clock,
		logger:   logger,
	}
}

type ShippingInput struct {
	Name    string `json:"shipping_name"`
	Email   string `json:"shipping_email"`
	Phone   string `json:"shipping_phone"`
	Address string `json:"shipping_address"`
	City    string `json:"shipping_city"`
	State   string `json:"shipping_state"`
	Zip     string `json:"shipping_zip"`
	Country string `json:"shipping_country"`
}

type CheckoutInput struct {
	Shipping      ShippingInput
	PaymentMethod string
}

type CheckoutResult struct {
	OrderID         int64
	OrderNumber     string
	RequiresPayment bool
	ClientSecret    string
}

// 必須フィールドの検証。足りないフィールド名をそのまま返す。
func validateShipping(s ShippingInput) error {
	required := []struct {
		name  string
		value string
	}{
		{"shipping_name", s.Name},
		{"shipping_email", s.Email},
		{"shipping_address", s.Address},
		{"shipping_city", s.City},
		{"shipping_zip", s.Zip},
		{"shipping_country", s.Country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is required", f.name))
		}
	}
	return nil
}

// 注文番号: ORD-YYYYMMDD-XXXXXXXX（末尾はuuid先頭8文字を大文字化）。
// DB側のunique indexが最後の砦。
func newOrderNumber(now time.Time, rawID string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(rawID, "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

// Checkout はカートを注文スナップショットに固める。
//
// 1トランザクションで Order + OrderItems を作成。
// intentの作成はトランザクションの外（外部callを挟んでTxを開けない）。
// intent失敗でも注文はpendingのまま残す（client_secretを返さないだけ）。
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutResult, error) {
	if userID <= 0 {
		return CheckoutResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateShipping(in.Shipping); err != nil {
		return CheckoutResult{}, err
	}

	method := in.PaymentMethod
	if method == "" {
		method = "card"
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err == repo.ErrUserNotFound {
		return CheckoutResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return CheckoutResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var order model.Order
	var orderItems []model.OrderItem

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return err
		}

		lines, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		var subtotal int64 = 0
		items := make([]model.OrderItem, 0, len(lines))
		for _, line := range lines {
			title := ""
			if b, err := r.Books().FindByID(ctx, line.BookID); err == nil {
				title = b.Title
			}
			items = append(items, model.OrderItem{
				BookID:            line.BookID,
				TitleSnapshot:     title,
				UnitPriceSnapshot: line.UnitPriceSnapshot,
				Quantity:          line.Quantity,
			})
			subtotal += line.UnitPriceSnapshot * line.Quantity
		}

		tax := taxFor(subtotal)
		shipping := shippingFor(subtotal)

		order = model.Order{
			UserID:          userID,
			OrderNumber:     newOrderNumber(u.clock.Now(), u.ids.NewID()),
			Status:          model.OrderStatusPending,
			Subtotal:        subtotal,
			Tax:             tax,
			ShippingCost:    shipping,
			Total:           subtotal + tax + shipping,
			ShippingName:    in.Shipping.Name,
			ShippingEmail:   in.Shipping.Email,
			ShippingPhone:   in.Shipping.Phone,
			ShippingAddress: in.Shipping.Address,
			ShippingCity:    in.Shipping.City,
			ShippingState:   in.Shipping.State,
			ShippingZip:     in.Shipping.Zip,
			ShippingCountry: in.Shipping.Country,
			PaymentMethod:   method,
			PaymentStatus:   model.PaymentStatusPending,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		order.ID = orderID

		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return err
		}
		orderItems = items

		// カード以外は外部ステップが無いので、同じTxでカートを空にする
		if method != "card" {
			if err := r.Carts().Clear(ctx, cart.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return CheckoutResult{}, err
		}
		u.logger.Error("checkout failed", zap.Int64("user_id", userID), zap.Error(err))
		return CheckoutResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	metrics.OrdersCreated.Inc()
	u.publishOrderEvent(ctx, events.EventTypeOrderCreated, order)

	if method != "card" {
		// 同期完了。確認メールはここで送る（失敗はログだけ）。
		if err := u.mailer.SendOrderConfirmation(order, orderItems, *user); err != nil {
			metrics.EmailsFailed.Inc()
			u.logger.Warn("order confirmation email failed",
				zap.Int64("order_id", order.ID), zap.Error(err))
		} else {
			metrics.EmailsSent.Inc()
		}
		return CheckoutResult{
			OrderID:         order.ID,
			OrderNumber:     order.OrderNumber,
			RequiresPayment: false,
		}, nil
	}

	// intent作成はTxの外。金額はセント単位なのでそのまま渡す。
	intent, err := u.gateway.CreateIntent(ctx, CreateIntentInput{
		AmountCents:  order.Total,
		Currency:     "usd",
		Description:  fmt.Sprintf("Order %s", order.OrderNumber),
		ReceiptEmail: order.ShippingEmail,
		Metadata: map[string]string{
			"order_id":     strconv.FormatInt(order.ID, 10),
			"order_number": order.OrderNumber,
			"user_id":      strconv.FormatInt(userID, 10),
		},
	})
	if err != nil {
		u.logger.Error("payment intent creation failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return CheckoutResult{}, NewHTTPError(http.StatusBadGateway, "payment setup failed")
	}

	if err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Orders().SetTransactionID(ctx, order.ID, intent.ID)
	}); err != nil {
		u.logger.Error("failed to store transaction id",
			zap.Int64("order_id", order.ID), zap.String("intent_id", intent.ID), zap.Error(err))
		return CheckoutResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CheckoutResult{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		RequiresPayment: true,
		ClientSecret:    intent.ClientSecret,
	}, nil
}

func (u *CheckoutUsecase) publishOrderEvent(ctx context.Context, eventType string, order model.Order) {
	if u.events == nil {
		return
	}
	if err := u.events.PublishOrderEvent(ctx, eventType, order.ID, order.OrderNumber, order.UserID, order.Total); err != nil {
		u.logger.Warn("order event publish failed",
			zap.String("event_type", eventType), zap.Int64("order_id", order.ID), zap.Error(err))
	}
}
