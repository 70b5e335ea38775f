package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, patient *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, patient *Patient) error
	List(ctx context.Context, filter ListFilter) ([]Patient, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, patient *Patient) error {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(patient).Error; err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var patient Patient
	err := r.db.WithContext(ctx).First(&patient, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}
	return &patient, nil
}

func (r *gormRepository) Update(ctx context.Context, patient *Patient) error {
	if err := r.db.WithContext(ctx).Save(patient).Error; err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]Patient, int64, error) {
	query := r.db.WithContext(ctx).Model(&Patient{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ?", pattern, pattern)
	}
	if filter.Barangay != "" {
		query = query.Where("barangay = ?", filter.Barangay)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	limit, offset := filter.limitOffset()
	var list []Patient
	if err := query.Order("last_name, first_name").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return list, total, nil
}
