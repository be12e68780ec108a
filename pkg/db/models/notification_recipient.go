package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// NotificationRecipient is a registered chat the dispatcher fans out to.
// Roles holds the audience tags (owner/manager/staff) the chat subscribes to.
type NotificationRecipient struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ChatID    int64          `gorm:"column:chat_id;not null;uniqueIndex"`
	Name      string         `gorm:"column:name;not null"`
	Roles     pq.StringArray `gorm:"column:roles;type:text[];not null;default:ARRAY[]::text[]"`
	Active    bool           `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}
