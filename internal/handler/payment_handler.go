package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookstore/internal/config"
	"bookstore/internal/middleware"
	"bookstore/internal/usecase"
)

// /payment/confirm と /stripe/webhook のHTTP
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

// DI
func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	OrderID         int64  `json:"order_id"`
}

type confirmPaymentResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
}

type webhookResponse struct {
	Success bool `json:"success"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/payment")
	g.Use(middleware.AuthJWT(cfg))
	g.POST("/confirm", h.confirm)

	// webhookは署名で認証する（JWTは通さない）
	e.POST("/stripe/webhook", h.webhook)
}

func (h *PaymentHandler) confirm(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	err := h.uc.ConfirmPayment(c.Request().Context(), userID, usecase.ConfirmPaymentInput{
		PaymentIntentID: req.PaymentIntentID,
		OrderID:         req.OrderID,
	})
	if err != nil {
		if he, ok := usecase.AsHTTPError(err); ok {
			return c.JSON(he.Status, map[string]interface{}{
				"success": false,
				"message": he.Message,
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "internal error",
		})
	}

	return c.JSON(http.StatusOK, confirmPaymentResponse{
		Success:  true,
		Redirect: fmt.Sprintf("/orders/%d", req.OrderID),
	})
}

// 生ボディのまま署名検証へ渡す（Bindすると壊れる）。
func (h *PaymentHandler) webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	signature := c.Request().Header.Get("Stripe-Signature")

	if err := h.uc.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		if errors.Is(err, usecase.ErrInvalidSignature) || errors.Is(err, usecase.ErrInvalidPayload) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, webhookResponse{Success: true})
}
