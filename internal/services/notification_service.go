// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/konisgames/storefront-backend/internal/config"
	"github.com/konisgames/storefront-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// SendOrderConfirmation emails the buyer their order summary and records an
// in-app notification for the back office. Runs after the order row exists,
// so a delivery failure never affects the checkout outcome.
func (s *NotificationService) SendOrderConfirmation(order *models.Order, lines []models.OrderLine) error {
	notification := &models.AdminNotification{
		Type:              "order_submitted",
		Title:             "New Order",
		Message:           fmt.Sprintf("Order #%d from %s for $%.2f", order.ID, order.Name, float64(order.TotalCents)/100),
		Priority:          models.NotificationPriorityHigh,
		RelatedResourceID: fmt.Sprintf("%d", order.ID),
	}
	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).Error("Failed to create admin notification")
	}

	data := map[string]interface{}{
		"CustomerName": order.Name,
		"OrderID":      order.ID,
		"Lines":        lines,
		"Subtotal":     fmt.Sprintf("%.2f", float64(order.SubtotalCents)/100),
		"Shipping":     fmt.Sprintf("%.2f", float64(order.ShippingCents)/100),
		"Total":        fmt.Sprintf("%.2f", float64(order.TotalCents)/100),
		"StoreURL":     s.config.Frontend.BaseURL,
	}

	subject := fmt.Sprintf("Order Confirmation #%d", order.ID)
	tmpl := s.getEmailTemplate("order_confirmation")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(order.Email, subject, body)
}

// SendOrderPaidNotification emails the buyer once an order is marked paid.
func (s *NotificationService) SendOrderPaidNotification(order *models.Order) error {
	data := map[string]interface{}{
		"CustomerName": order.Name,
		"OrderID":      order.ID,
		"Total":        fmt.Sprintf("%.2f", float64(order.TotalCents)/100),
	}

	subject := fmt.Sprintf("Payment Received for Order #%d", order.ID)
	tmpl := s.getEmailTemplate("order_paid")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(order.Email, subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email skipped, SMTP not configured")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"order_confirmation": {
			Subject: "Order Confirmation",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your order, {{.CustomerName}}!</h2>
	<p>We received order #{{.OrderID}}. Complete your payment through the link you were given to finish the purchase.</p>
	<table border="0" cellpadding="4">
		<tr><th align="left">Item</th><th align="left">Console</th><th align="left">Option</th><th align="right">Price</th><th align="right">Qty</th></tr>
		{{range .Lines}}
		<tr><td>{{.Name}}</td><td>{{.Console}}</td><td>{{.Category}}</td><td align="right">${{printf "%.2f" .Price}}</td><td align="right">{{.Quantity}}</td></tr>
		{{end}}
	</table>
	<p>Subtotal: ${{.Subtotal}}<br>Shipping: ${{.Shipping}}<br><strong>Total: ${{.Total}}</strong></p>
	<p>Best regards,<br>Konis Games</p>
</body>
</html>`,
		},
		"order_paid": {
			Subject: "Payment Received",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Payment received</h2>
	<p>Hello {{.CustomerName}},</p>
	<p>We received your payment of ${{.Total}} for order #{{.OrderID}}. Your reproduction is headed to production.</p>
	<p>Best regards,<br>Konis Games</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
