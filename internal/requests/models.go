package requests

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"oncocare/case-portal/case-portal-backend/internal/lifecycle"
)

// ServiceRequest is the persisted record of a patient service case. The
// scheduled-date and remark columns are the persistence slots the lifecycle
// engine writes through FieldsToPersist; column names match the engine's
// field names exactly.
type ServiceRequest struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	PatientID     uuid.UUID      `json:"patient_id" gorm:"type:uuid;index;not null"`
	Kind          string         `json:"kind" gorm:"index;not null"`
	Status        string         `json:"status" gorm:"index;not null"`
	TreatmentDate *time.Time     `json:"treatment_date,omitempty"`
	InterviewDate *time.Time     `json:"interview_date,omitempty"`
	ReleaseDate   *time.Time     `json:"release_date,omitempty"`
	ScreeningDate *time.Time     `json:"screening_date,omitempty"`
	ReturnRemarks string         `json:"return_remarks,omitempty"`
	RejectRemarks string         `json:"reject_remarks,omitempty"`
	LOAFileKey    string         `json:"loa_file_key,omitempty" gorm:"column:loa_file_key"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Snapshot assembles the engine's read-only view of this request. Document
// presence comes from the attachment store, keyed by slot.
func (r *ServiceRequest) Snapshot(documents map[string]bool) lifecycle.Request {
	dates := map[string]time.Time{}
	for field, v := range map[string]*time.Time{
		"treatment_date": r.TreatmentDate,
		"interview_date": r.InterviewDate,
		"release_date":   r.ReleaseDate,
		"screening_date": r.ScreeningDate,
	} {
		if v != nil {
			dates[field] = *v
		}
	}
	remarks := map[string]string{}
	if r.ReturnRemarks != "" {
		remarks["return_remarks"] = r.ReturnRemarks
	}
	if r.RejectRemarks != "" {
		remarks["reject_remarks"] = r.RejectRemarks
	}
	return lifecycle.Request{
		ID:             r.ID,
		Kind:           lifecycle.Kind(r.Kind),
		Status:         lifecycle.Status(r.Status),
		PatientID:      r.PatientID,
		ScheduledDates: dates,
		Remarks:        remarks,
		Documents:      documents,
	}
}

// ListFilter narrows and pages the admin list views.
type ListFilter struct {
	Kind      string
	Status    string
	PatientID *uuid.UUID
	Page      int
	PageSize  int
}

func (f ListFilter) limitOffset() (int, int) {
	size := f.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}
