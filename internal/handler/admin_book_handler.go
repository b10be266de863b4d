package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bookstore/internal/config"
	"bookstore/internal/middleware"
	"bookstore/internal/usecase"
)

// /admin/booksのHTTP
type AdminBookHandler struct {
	uc *usecase.AdminBookUsecase
}

// DI
func NewAdminBookHandler(uc *usecase.AdminBookUsecase) *AdminBookHandler {
	return &AdminBookHandler{uc: uc}
}

type BookRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	PublishedDate string `json:"published_date"`
	ISBN          string `json:"isbn"`
	Price         int64  `json:"price"`
	Author        string `json:"author"`
	Category      string `json:"category"`
}

func (h *AdminBookHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/books")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

func (r BookRequest) toInput() usecase.BookInput {
	return usecase.BookInput{
		Title:         r.Title,
		Description:   r.Description,
		PublishedDate: r.PublishedDate,
		ISBN:          r.ISBN,
		Price:         r.Price,
		Author:        r.Author,
		Category:      r.Category,
	}
}

func (h *AdminBookHandler) create(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateBook(c.Request().Context(), adminID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminBookHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateBook(c.Request().Context(), adminID, bookID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminBookHandler) remove(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteBook(c.Request().Context(), adminID, bookID); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
