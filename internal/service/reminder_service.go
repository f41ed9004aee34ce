package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avoronova/salon_bot/internal/model"
	"go.uber.org/zap"
)

// ReminderService два напоминания по каждой подтверждённой записи: накануне
// вечером и за час до начала. Флаг отправки пишется только после успешной
// доставки, поэтому неудачная отправка повторится на следующем тике
// (at-least-once), а удачная не продублируется.
type ReminderService struct {
	appointments AppointmentLedger
	notifier     Notifier
	location     *time.Location
	logger       *zap.Logger

	// eveningHour локальный час напоминания накануне визита
	eveningHour int

	now func() time.Time
}

func NewReminderService(
	appointments AppointmentLedger,
	notifier Notifier,
	location *time.Location,
	eveningHour int,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		appointments: appointments,
		notifier:     notifier,
		location:     location,
		eveningHour:  eveningHour,
		logger:       logger,
		now:          time.Now,
	}
}

// Tick один проход напоминаний. Ошибка по одной записи логируется и не
// прерывает обработку остальных.
func (s *ReminderService) Tick(ctx context.Context) {
	appointments, err := s.appointments.ListByStatus(ctx, model.StatusApproved)
	if err != nil {
		s.logger.Error("Reminder tick: failed to list approved appointments", zap.Error(err))
		return
	}

	for _, a := range appointments {
		if err := s.processOne(ctx, a); err != nil {
			s.logger.Error("Reminder tick: failed to process appointment",
				zap.Int64("appointment_id", a.ID),
				zap.Error(err))
		}
	}
}

func (s *ReminderService) processOne(ctx context.Context, a *model.Appointment) error {
	now := s.now()

	// После начала визита напоминать поздно
	if !now.Before(a.SlotStart) {
		return nil
	}

	if !a.RemindedEve && !now.Before(s.eveTrigger(a.SlotStart)) {
		text := fmt.Sprintf("🔔 Напоминаем: завтра у вас запись на %s.", a.SlotLabel)
		if err := s.notifier.NotifyClient(ctx, a.ClientID, text); err != nil {
			return fmt.Errorf("send eve reminder: %w", err)
		}
		if err := s.appointments.SetReminderEveSent(ctx, a.ID); err != nil {
			return err
		}
		s.logger.Info("Eve reminder sent", zap.Int64("appointment_id", a.ID))
	}

	if !a.RemindedHour && !now.Before(a.SlotStart.Add(-time.Hour)) {
		text := fmt.Sprintf("🔔 Через час у вас запись на %s. Ждём вас!", a.SlotLabel)
		if err := s.notifier.NotifyClient(ctx, a.ClientID, text); err != nil {
			return fmt.Errorf("send hour reminder: %w", err)
		}
		if err := s.appointments.SetReminderHourSent(ctx, a.ID); err != nil {
			return err
		}
		s.logger.Info("Hour reminder sent", zap.Int64("appointment_id", a.ID))
	}

	return nil
}

// eveTrigger момент вечернего напоминания: настроенный час накануне начала
// визита в зоне салона
func (s *ReminderService) eveTrigger(slotStart time.Time) time.Time {
	local := slotStart.In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day()-1, s.eveningHour, 0, 0, 0, s.location)
}
