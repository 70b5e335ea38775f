package notifications

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

// SentNotification is the persisted record of one outbound email. Failed
// rows double as the retry queue the scheduler sweeps.
type SentNotification struct {
	ID        uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey"`
	RequestID uuid.UUID          `json:"request_id" gorm:"type:uuid;index"`
	PatientID uuid.UUID          `json:"patient_id" gorm:"type:uuid;index"`
	Recipient string             `json:"recipient" gorm:"not null"`
	Subject   string             `json:"subject"`
	Body      string             `json:"body"`
	Status    NotificationStatus `json:"status" gorm:"index;not null"`
	Attempts  int                `json:"attempts"`
	LastError string             `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	SentAt    *time.Time         `json:"sent_at,omitempty"`
}
