package mail

import (
	"fmt"
	"strings"
	"time"

	"bookstore/internal/domain/model"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

const storeName = "Sky Readers Haven"

// SMTPでトランザクションメールを送るNotificationDispatcher実装。
// 送信失敗はerrorで返すが、呼び出し側はログに残して握りつぶす前提
// （通知の失敗で注文や支払いを失敗させない）。
type SMTPDispatcher struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewSMTPDispatcher(host string, port int, username string, password string, from string, logger *zap.Logger) *SMTPDispatcher {
	if from == "" {
		from = "noreply@skyreadershaven.com"
	}

	return &SMTPDispatcher{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: logger,
	}
}

func (d *SMTPDispatcher) SendOrderConfirmation(order model.Order, items []model.OrderItem, user model.User) error {
	subject := fmt.Sprintf("Order Confirmation - %s", order.OrderNumber)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", user.Email)
	fmt.Fprintf(&b, "Thank you for your order! Here are your order details:\n\n")
	fmt.Fprintf(&b, "Order Number: %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "Order Date: %s\n", order.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	fmt.Fprintf(&b, "Status: %s\n", strings.ToUpper(string(order.Status)))
	fmt.Fprintf(&b, "Payment Method: %s\n", strings.ToUpper(order.PaymentMethod))
	fmt.Fprintf(&b, "Payment Status: %s\n\n", strings.ToUpper(string(order.PaymentStatus)))

	fmt.Fprintf(&b, "ORDER ITEMS\n-----------\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%s\nQuantity: %d x %s = %s\n\n",
			it.TitleSnapshot, it.Quantity, dollars(it.UnitPriceSnapshot), dollars(it.UnitPriceSnapshot*it.Quantity))
	}

	fmt.Fprintf(&b, "Subtotal: %s\n", dollars(order.Subtotal))
	fmt.Fprintf(&b, "Tax (8%%): %s\n", dollars(order.Tax))
	if order.ShippingCost == 0 {
		fmt.Fprintf(&b, "Shipping: FREE\n")
	} else {
		fmt.Fprintf(&b, "Shipping: %s\n", dollars(order.ShippingCost))
	}
	fmt.Fprintf(&b, "-----------\nTOTAL: %s\n\n", dollars(order.Total))

	fmt.Fprintf(&b, "SHIPPING ADDRESS\n----------------\n%s\n%s\n%s, %s %s\n%s\n\n",
		order.ShippingName, order.ShippingAddress, order.ShippingCity,
		order.ShippingState, order.ShippingZip, order.ShippingCountry)

	fmt.Fprintf(&b, "We'll send you another email when your order ships.\n\nThank you for shopping with %s!\n", storeName)

	return d.send(order.ShippingEmail, subject, b.String())
}

func (d *SMTPDispatcher) SendPaymentReceipt(order model.Order, user model.User) error {
	subject := fmt.Sprintf("Payment Receipt - %s", order.OrderNumber)

	txn := order.TransactionID
	if txn == "" {
		txn = "N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", user.Email)
	fmt.Fprintf(&b, "This email confirms that we have received your payment for order %s.\n\n", order.OrderNumber)
	fmt.Fprintf(&b, "Amount: %s\n", dollars(order.Total))
	fmt.Fprintf(&b, "Transaction ID: %s\n", txn)
	fmt.Fprintf(&b, "Payment Method: %s\n", strings.ToUpper(order.PaymentMethod))
	fmt.Fprintf(&b, "Payment Date: %s\n\n", time.Now().Format("January 2, 2006 at 3:04 PM"))
	fmt.Fprintf(&b, "Your order is now being processed and will be shipped soon.\n\nThank you for your business!\n%s\n", storeName)

	return d.send(order.ShippingEmail, subject, b.String())
}

func (d *SMTPDispatcher) SendShippingNotice(order model.Order, user model.User, trackingNumber string) error {
	subject := fmt.Sprintf("Your Order Has Shipped - %s", order.OrderNumber)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", user.Email)
	fmt.Fprintf(&b, "Great news! Your order %s has been shipped and is on its way to you.\n\n", order.OrderNumber)
	if trackingNumber != "" {
		fmt.Fprintf(&b, "Tracking Number: %s\n\n", trackingNumber)
	}
	fmt.Fprintf(&b, "Estimated Delivery: 3-5 business days\n\n")
	fmt.Fprintf(&b, "Shipping Address:\n%s\n%s\n%s, %s %s\n\n",
		order.ShippingName, order.ShippingAddress, order.ShippingCity,
		order.ShippingState, order.ShippingZip)
	fmt.Fprintf(&b, "Thank you for your patience!\n%s\n", storeName)

	return d.send(order.ShippingEmail, subject, b.String())
}

func (d *SMTPDispatcher) send(to string, subject string, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", d.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := d.dialer.DialAndSend(m); err != nil {
		d.logger.Error("failed to send mail",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}

	d.logger.Info("mail sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

// セントを$12.34表記へ
func dollars(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
