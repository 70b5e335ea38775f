package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound: no request with the given id.
	ErrNotFound = errors.New("request not found")
	// ErrConflict: the stored status no longer matches the snapshot the
	// transition was evaluated against. The caller must discard the bundle
	// and re-evaluate, never retry-apply it.
	ErrConflict = errors.New("request status changed since evaluation")
)

type Repository interface {
	Create(ctx context.Context, req *ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceRequest, error)
	List(ctx context.Context, filter ListFilter) ([]ServiceRequest, int64, error)
	CommitTransition(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ScheduledOn returns requests with any scheduled date falling on the
	// given day, for the reminder sweep.
	ScheduledOn(ctx context.Context, day time.Time) ([]ServiceRequest, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, req *ServiceRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*ServiceRequest, error) {
	var req ServiceRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return &req, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]ServiceRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&ServiceRequest{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	limit, offset := filter.limitOffset()
	var reqs []ServiceRequest
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reqs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, total, nil
}

// CommitTransition writes the new status and the transition's persisted
// fields in one statement, guarded by an optimistic check on the status the
// evaluation saw. Zero rows affected means someone moved the request first.
func (r *gormRepository) CommitTransition(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string, fields map[string]any) error {
	updates := make(map[string]any, len(fields)+1)
	for col, v := range fields {
		updates[col] = v
	}
	updates["status"] = newStatus

	res := r.db.WithContext(ctx).
		Model(&ServiceRequest{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to commit transition: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&ServiceRequest{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check request after commit miss: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (r *gormRepository) ScheduledOn(ctx context.Context, day time.Time) ([]ServiceRequest, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var reqs []ServiceRequest
	err := r.db.WithContext(ctx).
		Where("(treatment_date >= ? AND treatment_date < ?) OR (interview_date >= ? AND interview_date < ?) OR (screening_date >= ? AND screening_date < ?)",
			start, end, start, end, start, end).
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduled requests: %w", err)
	}
	return reqs, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&ServiceRequest{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
