package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSlotNotFound = errors.New("document slot not found")

type Repository interface {
	CreateSlots(ctx context.Context, slots []RequiredDocument) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]RequiredDocument, error)
	GetSlot(ctx context.Context, requestID uuid.UUID, slotKey string) (*RequiredDocument, error)
	MarkUploaded(ctx context.Context, slot *RequiredDocument) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateSlots(ctx context.Context, slots []RequiredDocument) error {
	if len(slots) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&slots).Error; err != nil {
		return fmt.Errorf("failed to create document slots: %w", err)
	}
	return nil
}

func (r *gormRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]RequiredDocument, error) {
	var slots []RequiredDocument
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("slot_key").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list document slots: %w", err)
	}
	return slots, nil
}

func (r *gormRepository) GetSlot(ctx context.Context, requestID uuid.UUID, slotKey string) (*RequiredDocument, error) {
	var slot RequiredDocument
	err := r.db.WithContext(ctx).
		First(&slot, "request_id = ? AND slot_key = ?", requestID, slotKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document slot: %w", err)
	}
	return &slot, nil
}

func (r *gormRepository) MarkUploaded(ctx context.Context, slot *RequiredDocument) error {
	err := r.db.WithContext(ctx).Model(slot).Updates(map[string]any{
		"object_key":  slot.ObjectKey,
		"file_name":   slot.FileName,
		"file_size":   slot.FileSize,
		"uploaded_by": slot.UploadedBy,
		"uploaded_at": time.Now(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to mark slot uploaded: %w", err)
	}
	return nil
}
