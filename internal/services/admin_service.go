// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/konisgames/storefront-backend/internal/models"
	"github.com/konisgames/storefront-backend/internal/utils"
)

// AdminService backs the dashboard: notifications, audit trail, headline
// numbers. Order and catalog mutations live in their own services.
type AdminService struct {
	db     *gorm.DB
	orders *OrderService
}

type DashboardStats struct {
	Orders        *OrderStats `json:"orders"`
	TotalProducts int64       `json:"total_products"`
	TotalConsoles int64       `json:"total_consoles"`
	UnreadAlerts  int64       `json:"unread_alerts"`
}

func NewAdminService(db *gorm.DB, orders *OrderService) *AdminService {
	return &AdminService{db: db, orders: orders}
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	orderStats, err := s.orders.GetStats()
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{Orders: orderStats}
	if err := s.db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	s.db.Model(&models.Product{}).Where("console <> ''").Distinct("console").Count(&stats.TotalConsoles)
	s.db.Model(&models.AdminNotification{}).Where("status = ?", "unread").Count(&stats.UnreadAlerts)

	return stats, nil
}

func (s *AdminService) ListNotifications(params utils.PaginationParams) ([]models.AdminNotification, int64, error) {
	query := s.db.Model(&models.AdminNotification{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	allowedSortFields := []string{"created_at", "priority", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var notifications []models.AdminNotification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, total, nil
}

func (s *AdminService) MarkNotificationRead(id uuid.UUID) error {
	var notification models.AdminNotification
	if err := s.db.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("notification not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	now := time.Now()
	notification.Status = "read"
	notification.ReadAt = &now

	if err := s.db.Save(&notification).Error; err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}

func (s *AdminService) ListAuditLogs(params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{})

	if params.Search != "" {
		query = query.Where("action ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	allowedSortFields := []string{"created_at", "action", "resource_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}
