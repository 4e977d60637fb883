// internal/models/admin.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   string     `json:"resource_id" gorm:"size:64;index"`
	OldValues    JSONB      `json:"old_values" gorm:"type:jsonb"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	// Relationships
	User *AdminUser `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type AdminNotification struct {
	BaseModel
	Type              string               `json:"type" gorm:"type:varchar(50);not null;index"`
	Title             string               `json:"title" gorm:"size:255;not null"`
	Message           string               `json:"message" gorm:"type:text;not null"`
	Priority          NotificationPriority `json:"priority" gorm:"type:varchar(20);default:'medium';index"`
	Status            string               `json:"status" gorm:"type:varchar(20);default:'unread';index"`
	RelatedResourceID string               `json:"related_resource_id,omitempty" gorm:"size:64"`
	ReadAt            *time.Time           `json:"read_at"`
}
