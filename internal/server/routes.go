package server

import (
	"github.com/labstack/echo/v4"

	"bookstore/internal/config"
	"bookstore/internal/handler"
)

// Handlers は業務ルートを持つハンドラ一式。
type Handlers struct {
	Auth       *handler.AuthHandler
	Book       *handler.BookHandler
	Review     *handler.ReviewHandler
	Wishlist   *handler.WishlistHandler
	Cart       *handler.CartHandler
	Checkout   *handler.CheckoutHandler
	Payment    *handler.PaymentHandler
	Order      *handler.OrderHandler
	Contact    *handler.ContactHandler
	AdminOrder *handler.AdminOrderHandler
	AdminBook  *handler.AdminBookHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Book.RegisterRoutes(e)
	h.Review.RegisterRoutes(e, cfg)
	h.Wishlist.RegisterRoutes(e, cfg)
	h.Cart.RegisterRoutes(e, cfg)
	h.Checkout.RegisterRoutes(e, cfg)
	h.Payment.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Contact.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
	h.AdminBook.RegisterRoutes(e, cfg)
}
