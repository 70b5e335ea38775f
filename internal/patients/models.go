package patients

import (
	"time"

	"github.com/google/uuid"
)

// Patient is an intake record owned by the central office or a rural health
// unit.
type Patient struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	FirstName string     `json:"first_name" gorm:"not null"`
	LastName  string     `json:"last_name" gorm:"index;not null"`
	Email     string     `json:"email" gorm:"index"`
	Phone     string     `json:"phone"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Address   string     `json:"address"`
	Barangay  string     `json:"barangay"`
	RHUName   string     `json:"rhu_name" gorm:"column:rhu_name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FullName joins the name parts for print templates and lists.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ListFilter narrows and pages the patient list view.
type ListFilter struct {
	Search   string
	Barangay string
	Page     int
	PageSize int
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
