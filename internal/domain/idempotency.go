package domain

import "time"

// Idempotency remembers the selection produced for a client-supplied key,
// scoped by (user_id, queue_id, key). A retried POST with the same key is
// answered from the stored selection instead of being rejected as a
// second pick.
type Idempotency struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	UserID      string    `gorm:"type:char(36);not null;uniqueIndex:ux_idem_user_queue_key,priority:1"`
	QueueID     string    `gorm:"type:char(36);not null;uniqueIndex:ux_idem_user_queue_key,priority:2"`
	Key         string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_idem_user_queue_key,priority:3"`
	SelectionID string    `gorm:"type:char(36);not null"`
	Status      int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
