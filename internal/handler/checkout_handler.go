package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookstore/internal/config"
	"bookstore/internal/middleware"
	"bookstore/internal/usecase"
)

// /checkoutのHTTP
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type CheckoutRequest struct {
	ShippingName    string `json:"shipping_name"`
	ShippingEmail   string `json:"shipping_email"`
	ShippingPhone   string `json:"shipping_phone"`
	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingState   string `json:"shipping_state"`
	ShippingZip     string `json:"shipping_zip"`
	ShippingCountry string `json:"shipping_country"`
	PaymentMethod   string `json:"payment_method"`
}

// カード払いはclientSecretを返してクライアント側で確定させる。
type checkoutCardResponse struct {
	Success         bool   `json:"success"`
	RequiresPayment bool   `json:"requiresPayment"`
	ClientSecret    string `json:"clientSecret"`
	OrderID         int64  `json:"order_id"`
	OrderNumber     string `json:"order_number"`
}

// カード以外は同期完了
type checkoutRedirectResponse struct {
	Success     bool   `json:"success"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Redirect    string `json:"redirect"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/checkout")
	g.Use(middleware.AuthJWT(cfg))
	g.POST("", h.checkout)
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		Shipping: usecase.ShippingInput{
			Name:    req.ShippingName,
			Email:   req.ShippingEmail,
			Phone:   req.ShippingPhone,
			Address: req.ShippingAddress,
			City:    req.ShippingCity,
			State:   req.ShippingState,
			Zip:     req.ShippingZip,
			Country: req.ShippingCountry,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}

	if out.RequiresPayment {
		return c.JSON(http.StatusOK, checkoutCardResponse{
			Success:         true,
			RequiresPayment: true,
			ClientSecret:    out.ClientSecret,
			OrderID:         out.OrderID,
			OrderNumber:     out.OrderNumber,
		})
	}

	return c.JSON(http.StatusOK, checkoutRedirectResponse{
		Success:     true,
		OrderID:     out.OrderID,
		OrderNumber: out.OrderNumber,
		Redirect:    fmt.Sprintf("/orders/%d", out.OrderID),
	})
}
