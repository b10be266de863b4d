package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bookstore/internal/domain/model"
	"bookstore/internal/infra/events"
	"bookstore/internal/metrics"
	repo "bookstore/internal/repository"
)

// AdminOrderUsecase は管理者向けの注文管理。
// ステータスは既知の5値なら何から何へでも変えられる（遷移グラフは持たない）。
// shippedに「入った」ときだけ発送メールを1回送る。
type AdminOrderUsecase struct {
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	userRepo      repo.UserRepository
	auditRepo     repo.AuditLogRepository
	mailer        NotificationDispatcher
	events        EventPublisher
	logger        *zap.Logger
}

func NewAdminOrderUsecase(
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	userRepo repo.UserRepository,
	auditRepo repo.AuditLogRepository,
	mailer NotificationDispatcher,
	events EventPublisher,
	logger *zap.Logger,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		userRepo:      userRepo,
		auditRepo:     auditRepo,
		mailer:        mailer,
		events:        events,
		logger:        logger,
	}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type UpdateOrderStatusInput struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
}

// ListOrders は全注文の一覧（絞り込み付き）。
func (u *AdminOrderUsecase) ListOrders(ctx context.Context, in AdminOrderListInput) (OrderListResponse, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}
	if in.Status != "" && !model.OrderStatus(in.Status).Valid() {
		return OrderListResponse{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	orders, total, err := u.orderRepo.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: in.Status,
		UserID: in.UserID,
		From:   in.From,
		To:     in.To,
	})
	if err != nil {
		return OrderListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resp := OrderListResponse{
		Orders: make([]OrderResponse, 0, len(orders)),
		Total:  total,
		Page:   in.Page,
		Limit:  in.Limit,
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o, nil))
	}
	return resp, nil
}

// GetOrder は任意の注文の詳細（明細付き）。
func (u *AdminOrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderResponse, error) {
	if orderID <= 0 {
		return OrderResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.orderItemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderResponse(o, items), nil
}

// UpdateStatus はステータス変更。
// shipped以外→shipped の変化のときだけ発送メール（失敗はログだけ）。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorUserID int64, orderID int64, in UpdateOrderStatusInput) (OrderResponse, error) {
	if orderID <= 0 {
		return OrderResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(in.Status)
	if !newStatus.Valid() {
		return OrderResponse{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	prevStatus := o.Status
	if err := u.orderRepo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		if err == repo.ErrNotFound {
			return OrderResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return OrderResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	o.Status = newStatus

	u.recordAudit(ctx, actorUserID, orderID, prevStatus, newStatus)

	// shippedへ入ったときだけ1回
	if newStatus == model.OrderStatusShipped && prevStatus != model.OrderStatusShipped {
		u.notifyShipped(ctx, o, in.TrackingNumber)
	}

	return toOrderResponse(o, nil), nil
}

func (u *AdminOrderUsecase) notifyShipped(ctx context.Context, o model.Order, trackingNumber string) {
	if u.events != nil {
		if err := u.events.PublishOrderEvent(ctx, events.EventTypeOrderShipped, o.ID, o.OrderNumber, o.UserID, o.Total); err != nil {
			u.logger.Warn("order event publish failed",
				zap.String("event_type", events.EventTypeOrderShipped), zap.Int64("order_id", o.ID), zap.Error(err))
		}
	}

	user, err := u.userRepo.FindByID(ctx, o.UserID)
	if err != nil {
		u.logger.Warn("shipping notice skipped: user lookup failed",
			zap.Int64("order_id", o.ID), zap.Error(err))
		return
	}

	if err := u.mailer.SendShippingNotice(o, *user, trackingNumber); err != nil {
		metrics.EmailsFailed.Inc()
		u.logger.Warn("shipping notice email failed",
			zap.Int64("order_id", o.ID), zap.Error(err))
	} else {
		metrics.EmailsSent.Inc()
	}
}

func (u *AdminOrderUsecase) recordAudit(ctx context.Context, actorUserID int64, orderID int64, before, after model.OrderStatus) {
	beforeJSON, _ := json.Marshal(map[string]string{"status": string(before)})
	afterJSON, _ := json.Marshal(map[string]string{"status": string(after)})

	err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateOrderStatus,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
	})
	if err != nil {
		u.logger.Warn("audit log write failed",
			zap.Int64("order_id", orderID), zap.Error(err))
	}
}
