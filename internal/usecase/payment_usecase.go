package usecase

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"bookstore/internal/domain/model"
	"bookstore/internal/infra/events"
	"bookstore/internal/metrics"
	repo "bookstore/internal/repository"
)

// processor側のステータス語彙。succeeded / processing 以外は失敗扱い。
const (
	intentStatusSucceeded  = "succeeded"
	intentStatusProcessing = "processing"
)

// PaymentUsecase は支払い結果の突き合わせを担当する。
// 入口は2つ（クライアントの確認callとwebhook）。どちらが先でも、
// 何度来ても、最終状態と副作用は1回分に収まること。
type PaymentUsecase struct {
	tx            repo.TransactionManager
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	userRepo      repo.UserRepository
	gateway       PaymentGateway
	mailer        NotificationDispatcher
	events        EventPublisher
	logger        *zap.Logger
}

func NewPaymentUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	userRepo repo.UserRepository,
	gateway PaymentGateway,
	mailer NotificationDispatcher,
	events EventPublisher,
	logger *zap.Logger,
) *PaymentUsecase {
	return &PaymentUsecase{
		tx:            tx,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		userRepo:      userRepo,
		gateway:       gateway,
		mailer:        mailer,
		events:        events,
		logger:        logger,
	}
}

type ConfirmPaymentInput struct {
	PaymentIntentID string `json:"payment_intent_id"`
	OrderID         int64  `json:"order_id"`
}

// ConfirmPayment はクライアント側からの確認入口。
// クライアントが言うステータスは信用せず、processorから取り直す。
func (u *PaymentUsecase) ConfirmPayment(ctx context.Context, userID int64, in ConfirmPaymentInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.PaymentIntentID == "" || in.OrderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "payment_intent_id and order_id are required")
	}

	order, err := u.orderRepo.FindByID(ctx, in.OrderID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if order.UserID != userID {
		return NewHTTPError(http.StatusNotFound, "order not found")
	}
	// カード払いでintentを開いた注文だけが確認できる。
	// TransactionIDが無い注文に任意のintentを紐付けられてはいけない。
	if order.PaymentMethod != "card" || order.TransactionID == "" {
		return NewHTTPError(http.StatusBadRequest, "order has no pending card payment")
	}
	if order.TransactionID != in.PaymentIntentID {
		return NewHTTPError(http.StatusBadRequest, "payment intent does not match order")
	}

	intent, err := u.gateway.RetrieveIntent(ctx, in.PaymentIntentID)
	if err != nil {
		u.logger.Error("intent retrieval failed",
			zap.Int64("order_id", in.OrderID), zap.Error(err))
		return NewHTTPError(http.StatusBadGateway, "payment verification failed")
	}

	return u.applyIntentStatus(ctx, order, intent.Status)
}

// HandleWebhook はprocessorからの非同期入口。
// 署名・ペイロードの不正は拒否（ErrInvalidSignature / ErrInvalidPayload）。
// metadataのorder_idが欠損・不正なイベントは処理できないので黙って無視する
// （エラーを返すとprocessor側が永遠に再送してくる）。
func (u *PaymentUsecase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := u.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		return nil
	}

	rawID, ok := event.Metadata["order_id"]
	if !ok {
		u.logger.Warn("webhook event without order_id metadata",
			zap.String("intent_id", event.IntentID))
		return nil
	}
	orderID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || orderID <= 0 {
		u.logger.Warn("webhook event with malformed order_id metadata",
			zap.String("intent_id", event.IntentID), zap.String("order_id", rawID))
		return nil
	}

	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		u.logger.Warn("webhook event for unknown order",
			zap.Int64("order_id", orderID), zap.String("intent_id", event.IntentID))
		return nil
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	status := intentStatusSucceeded
	if event.Type == "payment_intent.payment_failed" {
		status = "failed"
	}
	return u.applyIntentStatus(ctx, order, status)
}

// applyIntentStatus はprocessorのステータスを注文へ反映する。
//
//	succeeded  → completed（注文はprocessing、カートを空にして確認+領収メール）
//	processing → processing（副作用なし）
//	それ以外   → failed（注文はcancelled）
//
// completedへの遷移はDB側のcompare-and-set。勝者だけが副作用を実行し、
// 2回目以降の適用はno-opになる。
func (u *PaymentUsecase) applyIntentStatus(ctx context.Context, order model.Order, status string) error {
	switch status {
	case intentStatusSucceeded:
		return u.applySucceeded(ctx, order)
	case intentStatusProcessing:
		if err := u.orderRepo.MarkPaymentProcessing(ctx, order.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	default:
		return u.applyFailed(ctx, order)
	}
}

func (u *PaymentUsecase) applySucceeded(ctx context.Context, order model.Order) error {
	var won bool
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		w, err := r.Orders().MarkPaymentCompleted(ctx, order.ID)
		if err != nil {
			return err
		}
		won = w
		if !won {
			// 先着が処理済み。何もせず抜ける。
			return nil
		}

		cart, err := r.Carts().FindByUserID(ctx, order.UserID)
		if err == repo.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return r.Carts().Clear(ctx, cart.ID)
	})
	if err != nil {
		u.logger.Error("payment completion failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !won {
		return nil
	}

	metrics.PaymentsCompleted.Inc()
	u.publishOrderEvent(ctx, events.EventTypeOrderPaid, order)
	u.sendCompletionEmails(ctx, order)
	return nil
}

func (u *PaymentUsecase) applyFailed(ctx context.Context, order model.Order) error {
	won, err := u.orderRepo.MarkPaymentFailed(ctx, order.ID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if won {
		metrics.PaymentsFailed.Inc()
		u.logger.Info("payment failed",
			zap.Int64("order_id", order.ID), zap.String("order_number", order.OrderNumber))
	}
	return nil
}

// 確認メールと領収メール。失敗してもここで握りつぶす。
func (u *PaymentUsecase) sendCompletionEmails(ctx context.Context, order model.Order) {
	user, err := u.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		u.logger.Warn("completion email skipped: user lookup failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	items, err := u.orderItemRepo.ListByOrderID(ctx, order.ID)
	if err != nil {
		u.logger.Warn("completion email: item lookup failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
		items = nil
	}

	if err := u.mailer.SendOrderConfirmation(order, items, *user); err != nil {
		metrics.EmailsFailed.Inc()
		u.logger.Warn("order confirmation email failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
	} else {
		metrics.EmailsSent.Inc()
	}

	if err := u.mailer.SendPaymentReceipt(order, *user); err != nil {
		metrics.EmailsFailed.Inc()
		u.logger.Warn("payment receipt email failed",
			zap.Int64("order_id", order.ID), zap.Error(err))
	} else {
		metrics.EmailsSent.Inc()
	}
}

func (u *PaymentUsecase) publishOrderEvent(ctx context.Context, eventType string, order model.Order) {
	if u.events == nil {
		return
	}
	if err := u.events.PublishOrderEvent(ctx, eventType, order.ID, order.OrderNumber, order.UserID, order.Total); err != nil {
		u.logger.Warn("order event publish failed",
			zap.String("event_type", eventType), zap.Int64("order_id", order.ID), zap.Error(err))
	}
}
