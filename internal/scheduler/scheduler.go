package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"oncocare/case-portal/case-portal-backend/internal/requests"
)

// ReminderSource lists the requests with a schedule on a given day.
type ReminderSource interface {
	ScheduledOn(ctx context.Context, day time.Time) ([]requests.ServiceRequest, error)
}

// ReminderSender emails one schedule reminder.
type ReminderSender interface {
	SendDateReminder(ctx context.Context, requestID, patientID uuid.UUID, kind string, day time.Time) error
}

// NotificationRetrier re-sends queued failed notifications.
type NotificationRetrier interface {
	RetryFailed(ctx context.Context, limit int) error
}

// Scheduler runs the portal's background sweeps: a daily reminder pass for
// tomorrow's schedules and a periodic retry of failed notifications.
type Scheduler struct {
	cron    *cron.Cron
	source  ReminderSource
	sender  ReminderSender
	retrier NotificationRetrier
	logger  *zap.Logger
	retrySz int
	now     func() time.Time
}

func New(source ReminderSource, sender ReminderSender, retrier NotificationRetrier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		source:  source,
		sender:  sender,
		retrier: retrier,
		logger:  logger,
		retrySz: 50,
		now:     time.Now,
	}
}

// Start registers and launches the cron jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 7 * * *", s.runReminders); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("*/15 * * * *", s.runRetries); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron runner and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tomorrow := startOfDay(s.now().UTC()).AddDate(0, 0, 1)
	due, err := s.source.ScheduledOn(ctx, tomorrow)
	if err != nil {
		s.logger.Error("reminder sweep failed", zap.Error(err))
		return
	}
	for i := range due {
		day := scheduledDay(&due[i], tomorrow)
		if day == nil {
			continue
		}
		if err := s.sender.SendDateReminder(ctx, due[i].ID, due[i].PatientID, due[i].Kind, *day); err != nil {
			s.logger.Warn("failed to send reminder",
				zap.String("request_id", due[i].ID.String()),
				zap.Error(err))
		}
	}
	s.logger.Info("reminder sweep finished", zap.Int("due", len(due)))
}

func (s *Scheduler) runRetries() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.retrier.RetryFailed(ctx, s.retrySz); err != nil {
		s.logger.Error("notification retry sweep failed", zap.Error(err))
	}
}

// scheduledDay picks the schedule date falling on the swept day. A request
// can carry several dates at once; only the one inside the window is the
// reason it was matched, and only that one belongs in the reminder.
func scheduledDay(req *requests.ServiceRequest, day time.Time) *time.Time {
	start := startOfDay(day)
	end := start.AddDate(0, 0, 1)
	for _, d := range []*time.Time{req.TreatmentDate, req.InterviewDate, req.ScreeningDate} {
		if d != nil && !d.Before(start) && d.Before(end) {
			return d
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
