// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/konisgames/storefront-backend/internal/models"
	"github.com/konisgames/storefront-backend/internal/utils"
)

type OrderService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// OrderWithLines is the admin read model: the raw order row plus its
// details column decoded back into typed lines.
type OrderWithLines struct {
	models.Order
	Lines []models.OrderLine `json:"lines"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	Paid *bool `json:"paid,omitempty"`
}

type OrderStats struct {
	TotalOrders       int64 `json:"total_orders"`
	PaidOrders        int64 `json:"paid_orders"`
	PendingOrders     int64 `json:"pending_orders"`
	RevenueCents      int64 `json:"revenue_cents"`
	OutstandingCents  int64 `json:"outstanding_cents"`
	OrdersLast30Days  int64 `json:"orders_last_30_days"`
	RevenueLast30Days int64 `json:"revenue_last_30_days"`
}

func NewOrderService(db *gorm.DB, notifications *NotificationService) *OrderService {
	return &OrderService{db: db, notifications: notifications}
}

// RecordOrder persists a submitted order.
func (s *OrderService) RecordOrder(order *models.Order) error {
	if order.Status == "" {
		order.Status = models.OrderStatusSubmitted
	}
	if err := s.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to record order: %w", err)
	}
	return nil
}

func (s *OrderService) GetOrder(id int64) (*OrderWithLines, error) {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &OrderWithLines{Order: order, Lines: models.DecodeOrderLines(order.Details)}, nil
}

// ListOrders is the back-office customer feed.
func (s *OrderService) ListOrders(params OrderSearchParams) ([]OrderWithLines, int64, error) {
	query := s.db.Model(&models.Order{})

	if params.Paid != nil {
		query = query.Where("paid = ?", *params.Paid)
	}
	if params.Search != "" {
		search := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "email", "total_cents", "paid"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	result := make([]OrderWithLines, 0, len(orders))
	for _, order := range orders {
		result = append(result, OrderWithLines{Order: order, Lines: models.DecodeOrderLines(order.Details)})
	}
	return result, total, nil
}

// MarkPaid flags an order as paid and stores the payment reference. Marking
// an already-paid order again only updates the reference.
func (s *OrderService) MarkPaid(id int64, paymentRef string) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	wasPaid := order.Paid
	order.Paid = true
	order.PaymentRef = paymentRef
	order.Status = models.OrderStatusPaid

	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if !wasPaid && s.notifications != nil {
		go func(o models.Order) {
			if err := s.notifications.SendOrderPaidNotification(&o); err != nil {
				logrus.WithError(err).Error("Failed to send paid notification")
			}
		}(order)
	}

	return &order, nil
}

func (s *OrderService) CancelOrder(id int64) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	order.Status = models.OrderStatusCancelled
	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return &order, nil
}

func (s *OrderService) GetStats() (*OrderStats, error) {
	stats := &OrderStats{}

	if err := s.db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	s.db.Model(&models.Order{}).Where("paid = ?", true).Count(&stats.PaidOrders)
	s.db.Model(&models.Order{}).
		Where("paid = ? AND status <> ?", false, models.OrderStatusCancelled).
		Count(&stats.PendingOrders)

	s.db.Model(&models.Order{}).Where("paid = ?", true).
		Select("COALESCE(SUM(total_cents), 0)").Scan(&stats.RevenueCents)
	s.db.Model(&models.Order{}).
		Where("paid = ? AND status <> ?", false, models.OrderStatusCancelled).
		Select("COALESCE(SUM(total_cents), 0)").Scan(&stats.OutstandingCents)

	cutoff := time.Now().AddDate(0, 0, -30)
	s.db.Model(&models.Order{}).Where("created_at >= ?", cutoff).Count(&stats.OrdersLast30Days)
	s.db.Model(&models.Order{}).Where("paid = ? AND created_at >= ?", true, cutoff).
		Select("COALESCE(SUM(total_cents), 0)").Scan(&stats.RevenueLast30Days)

	return stats, nil
}
