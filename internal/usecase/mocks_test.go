package usecase_test

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
	"bookstore/internal/usecase"
)

// =====================
// Mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndBook(ctx context.Context, cartID int64, bookID int64, addQty int64, unitPriceSnapshot int64) error {
	args := m.Called(ctx, cartID, bookID, addQty, unitPriceSnapshot)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type BookRepoMock struct{ mock.Mock }

func (m *BookRepoMock) List(ctx context.Context, q repo.BookListQuery) ([]model.Book, int64, error) {
	args := m.Called(ctx, q)
	books, _ := args.Get(0).([]model.Book)
	return books, args.Get(1).(int64), args.Error(2)
}

func (m *BookRepoMock) FindByID(ctx context.Context, id int64) (model.Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(model.Book)
	return b, args.Error(1)
}

func (m *BookRepoMock) FindByISBN(ctx context.Context, isbn string) (model.Book, error) {
	args := m.Called(ctx, isbn)
	b, _ := args.Get(0).(model.Book)
	return b, args.Error(1)
}

func (m *BookRepoMock) Create(ctx context.Context, b model.Book) (model.Book, error) {
	args := m.Called(ctx, b)
	created, _ := args.Get(0).(model.Book)
	return created, args.Error(1)
}

func (m *BookRepoMock) Update(ctx context.Context, b model.Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BookRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) SetTransactionID(ctx context.Context, orderID int64, transactionID string) error {
	args := m.Called(ctx, orderID, transactionID)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkPaymentCompleted(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) MarkPaymentFailed(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) MarkPaymentProcessing(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) HasPurchased(ctx context.Context, userID int64, bookID int64) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

type ReviewRepoMock struct{ mock.Mock }

func (m *ReviewRepoMock) Create(ctx context.Context, review model.Review) (model.Review, error) {
	args := m.Called(ctx, review)
	r, _ := args.Get(0).(model.Review)
	return r, args.Error(1)
}

func (m *ReviewRepoMock) FindByID(ctx context.Context, reviewID int64) (model.Review, error) {
	args := m.Called(ctx, reviewID)
	r, _ := args.Get(0).(model.Review)
	return r, args.Error(1)
}

func (m *ReviewRepoMock) List(ctx context.Context, f repo.ReviewListFilter) ([]model.Review, int64, error) {
	args := m.Called(ctx, f)
	reviews, _ := args.Get(0).([]model.Review)
	return reviews, args.Get(1).(int64), args.Error(2)
}

func (m *ReviewRepoMock) ExistsByUserAndBook(ctx context.Context, userID int64, bookID int64) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *ReviewRepoMock) UpdateStatus(ctx context.Context, reviewID int64, status model.ReviewStatus) error {
	args := m.Called(ctx, reviewID, status)
	return args.Error(0)
}

func (m *ReviewRepoMock) ApprovedRating(ctx context.Context, bookID int64) (float64, int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(float64), args.Get(1).(int64), args.Error(2)
}

func (m *ReviewRepoMock) AddVote(ctx context.Context, vote model.ReviewVote) error {
	args := m.Called(ctx, vote)
	return args.Error(0)
}

func (m *ReviewRepoMock) HasVoted(ctx context.Context, userID int64, reviewID int64) (bool, error) {
	args := m.Called(ctx, userID, reviewID)
	return args.Bool(0), args.Error(1)
}

type WishlistRepoMock struct{ mock.Mock }

func (m *WishlistRepoMock) Add(ctx context.Context, item model.Wishlist) (model.Wishlist, error) {
	args := m.Called(ctx, item)
	w, _ := args.Get(0).(model.Wishlist)
	return w, args.Error(1)
}

func (m *WishlistRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Wishlist, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Wishlist)
	return items, args.Error(1)
}

func (m *WishlistRepoMock) ExistsByUserAndBook(ctx context.Context, userID int64, bookID int64) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *WishlistRepoMock) DeleteByUserAndBook(ctx context.Context, userID int64, bookID int64) error {
	args := m.Called(ctx, userID, bookID)
	return args.Error(0)
}

type ContactRepoMock struct{ mock.Mock }

func (m *ContactRepoMock) Create(ctx context.Context, msg model.ContactMessage) (model.ContactMessage, error) {
	args := m.Called(ctx, msg)
	c, _ := args.Get(0).(model.ContactMessage)
	return c, args.Error(1)
}

func (m *ContactRepoMock) List(ctx context.Context, f repo.ContactMessageListFilter) ([]model.ContactMessage, int64, error) {
	args := m.Called(ctx, f)
	msgs, _ := args.Get(0).([]model.ContactMessage)
	return msgs, args.Get(1).(int64), args.Error(2)
}

func (m *ContactRepoMock) UpdateStatus(ctx context.Context, msgID int64, status model.ContactMessageStatus) error {
	args := m.Called(ctx, msgID, status)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateIntent(ctx context.Context, in usecase.CreateIntentInput) (usecase.PaymentIntent, error) {
	args := m.Called(ctx, in)
	pi, _ := args.Get(0).(usecase.PaymentIntent)
	return pi, args.Error(1)
}

func (m *GatewayMock) RetrieveIntent(ctx context.Context, id string) (usecase.PaymentIntent, error) {
	args := m.Called(ctx, id)
	pi, _ := args.Get(0).(usecase.PaymentIntent)
	return pi, args.Error(1)
}

func (m *GatewayMock) VerifyWebhook(payload []byte, signature string) (usecase.WebhookEvent, error) {
	args := m.Called(payload, signature)
	ev, _ := args.Get(0).(usecase.WebhookEvent)
	return ev, args.Error(1)
}

type MailerMock struct{ mock.Mock }

func (m *MailerMock) SendOrderConfirmation(order model.Order, items []model.OrderItem, user model.User) error {
	args := m.Called(order, items, user)
	return args.Error(0)
}

func (m *MailerMock) SendPaymentReceipt(order model.Order, user model.User) error {
	args := m.Called(order, user)
	return args.Error(0)
}

func (m *MailerMock) SendShippingNotice(order model.Order, user model.User, trackingNumber string) error {
	args := m.Called(order, user, trackingNumber)
	return args.Error(0)
}

// =====================
// Tx fakes
// =====================

// TxReposFake はモックのrepo群をそのままTxReposとして見せる。
type TxReposFake struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	cartItems  repo.CartItemRepository
	books      repo.BookRepository
}

func (f *TxReposFake) Orders() repo.OrderRepository         { return f.orders }
func (f *TxReposFake) OrderItems() repo.OrderItemRepository { return f.orderItems }
func (f *TxReposFake) Carts() repo.CartRepository           { return f.carts }
func (f *TxReposFake) CartItems() repo.CartItemRepository   { return f.cartItems }
func (f *TxReposFake) Books() repo.BookRepository           { return f.books }

// TxManagerFake はトランザクションを張らずにfnを呼ぶだけ。
type TxManagerFake struct {
	repos *TxReposFake
}

func (tm *TxManagerFake) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(tm.repos)
}

// =====================
// Clock / ID fakes
// =====================

type ClockFake struct {
	now time.Time
}

func (c *ClockFake) Now() time.Time { return c.now }

// IDGenFake は連番をuuid風の36文字に埋めて返す。
type IDGenFake struct {
	seq int
}

func (g *IDGenFake) NewID() string {
	g.seq++
	return fmt.Sprintf("%08x-0000-0000-0000-000000000000", g.seq)
}
