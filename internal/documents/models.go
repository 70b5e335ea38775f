package documents

import (
	"time"

	"github.com/google/uuid"
)

// RequiredDocument is one checklist slot of a service request. Slots are
// created when the request is, one per slot key of the request's kind, and
// the set never changes afterwards; uploads only fill them in.
type RequiredDocument struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	RequestID  uuid.UUID  `json:"request_id" gorm:"type:uuid;index;not null"`
	SlotKey    string     `json:"slot_key" gorm:"index;not null"`
	ObjectKey  *string    `json:"object_key,omitempty"`
	FileName   string     `json:"file_name,omitempty"`
	FileSize   int64      `json:"file_size,omitempty"`
	UploadedBy *uuid.UUID `json:"uploaded_by,omitempty" gorm:"type:uuid"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Present reports whether an artifact has been uploaded into this slot.
func (d *RequiredDocument) Present() bool {
	return d.ObjectKey != nil && *d.ObjectKey != ""
}
