package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"oncocare/case-portal/case-portal-backend/internal/requests"
)

// PatientDirectory resolves the notification recipient for a patient record.
type PatientDirectory interface {
	EmailFor(ctx context.Context, patientID uuid.UUID) (string, error)
}

// Service records and dispatches status-change emails. A failed dispatch is
// kept as a failed row; RetryFailed re-sends it later. The caller's committed
// status is never touched either way.
type Service struct {
	db       *gorm.DB
	email    EmailSender
	patients PatientDirectory
	logger   *zap.Logger
}

func NewService(db *gorm.DB, email EmailSender, patients PatientDirectory, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		email:    email,
		patients: patients,
		logger:   logger,
	}
}

// NotifyStatusChange implements requests.Notifier.
func (s *Service) NotifyStatusChange(ctx context.Context, n requests.StatusNotification) error {
	recipient, err := s.patients.EmailFor(ctx, n.PatientID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}

	subject, body := composeStatusEmail(n)
	record := &SentNotification{
		ID:        uuid.New(),
		RequestID: n.RequestID,
		PatientID: n.PatientID,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create notification record: %w", err)
	}

	return s.dispatch(ctx, record)
}

// SendDateReminder emails the patient about a scheduled date coming up. Used
// by the daily reminder sweep, not by transitions.
func (s *Service) SendDateReminder(ctx context.Context, requestID, patientID uuid.UUID, kind string, day time.Time) error {
	recipient, err := s.patients.EmailFor(ctx, patientID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}
	record := &SentNotification{
		ID:        uuid.New(),
		RequestID: requestID,
		PatientID: patientID,
		Recipient: recipient,
		Subject:   fmt.Sprintf("Reminder: %s schedule on %s", kindLabel(kind), day.Format("January 2, 2006")),
		Body: fmt.Sprintf("This is a reminder that your %s request has a schedule on %s. Please bring a valid ID.",
			kindLabel(kind), day.Format("January 2, 2006")),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create reminder record: %w", err)
	}
	return s.dispatch(ctx, record)
}

// RetryFailed re-sends up to limit failed notifications, oldest first. The
// scheduler calls this on a fixed interval.
func (s *Service) RetryFailed(ctx context.Context, limit int) error {
	var failed []SentNotification
	err := s.db.WithContext(ctx).
		Where("status = ?", StatusFailed).
		Order("created_at").
		Limit(limit).
		Find(&failed).Error
	if err != nil {
		return fmt.Errorf("failed to load retry queue: %w", err)
	}

	for i := range failed {
		if err := s.dispatch(ctx, &failed[i]); err != nil {
			s.logger.Warn("notification retry failed",
				zap.String("notification_id", failed[i].ID.String()),
				zap.Int("attempts", failed[i].Attempts),
				zap.Error(err))
		}
	}
	return nil
}

// ListForRequest returns the notification history of one request.
func (s *Service) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]SentNotification, error) {
	var records []SentNotification
	err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return records, nil
}

func (s *Service) dispatch(ctx context.Context, record *SentNotification) error {
	record.Attempts++
	sendErr := s.email.Send(ctx, record.Recipient, record.Subject, record.Body)
	if sendErr != nil {
		record.Status = StatusFailed
		record.LastError = sendErr.Error()
	} else {
		record.Status = StatusSent
		record.LastError = ""
		now := time.Now()
		record.SentAt = &now
	}
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to update notification record: %w", err)
	}
	return sendErr
}

func composeStatusEmail(n requests.StatusNotification) (subject, body string) {
	subject = fmt.Sprintf("Update on your %s request", kindLabel(n.Kind))
	body = fmt.Sprintf("Your %s request is now marked %q.", kindLabel(n.Kind), n.NewStatus)
	if n.Remark != "" {
		body += "\n\nRemarks from the reviewing office:\n" + n.Remark
	}
	return subject, body
}

func kindLabel(kind string) string {
	switch kind {
	case "treatment_assistance":
		return "treatment assistance"
	case "pre_cancerous_medication":
		return "medication"
	case "mass_screening_application":
		return "mass screening"
	case "pre_enrollment":
		return "enrollment"
	default:
		return kind
	}
}
