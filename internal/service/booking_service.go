package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/avoronova/salon_bot/internal/repository/base"
	"go.uber.org/zap"
)

// Client данные клиента из апдейта
type Client struct {
	ID       int64
	Username string
	Name     string
}

// BookingService машина состояний заявки. Все переходы, затрагивающие
// одновременно заявку и окна, выполняются в одной транзакции с блокировкой
// строки заявки.
type BookingService struct {
	tx           TxRunner
	slots        SlotStore
	appointments AppointmentLedger
	history      HistoryLog
	blacklist    BlacklistGate
	procedures   ProcedureCatalog
	notifier     Notifier
	logger       *zap.Logger
}

func NewBookingService(
	tx TxRunner,
	slots SlotStore,
	appointments AppointmentLedger,
	history HistoryLog,
	blacklist BlacklistGate,
	procedures ProcedureCatalog,
	notifier Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:           tx,
		slots:        slots,
		appointments: appointments,
		history:      history,
		blacklist:    blacklist,
		procedures:   procedures,
		notifier:     notifier,
		logger:       logger,
	}
}

// Submit создаёт заявку клиента на окно.
// Заявка на ближайшее окно становится pending, на более позднее -
// conditional (или reserved_later при simpleReserve). Окно отложенной заявки
// остаётся в пуле до подтверждения мастером.
func (s *BookingService) Submit(ctx context.Context, client Client, slotID int64, procedureID *int64, simpleReserve bool) (*model.Appointment, error) {
	username := NormalizeUsername(client.Username)
	if username != "" {
		blacklisted, err := s.blacklist.IsBlacklisted(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("check blacklist: %w", err)
		}
		if blacklisted {
			return nil, ErrBlacklisted
		}
	}

	var appointment *model.Appointment

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		slot, err := s.slots.GetByID(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return ErrSlotGone
		}

		exists, err := s.appointments.HasActive(ctx, client.ID, slotID)
		if err != nil {
			return fmt.Errorf("check active appointment: %w", err)
		}
		if exists {
			return ErrDuplicateAppointment
		}

		if procedureID != nil {
			procedure, err := s.procedures.GetByID(ctx, *procedureID)
			if err != nil {
				return fmt.Errorf("get procedure: %w", err)
			}
			if procedure == nil || !procedure.IsActive {
				return ErrProcedureNotFound
			}
		}

		earliest, err := s.slots.Earliest(ctx)
		if err != nil {
			return fmt.Errorf("get earliest slot: %w", err)
		}

		status := model.StatusPending
		if earliest != nil && earliest.ID != slot.ID {
			if simpleReserve {
				status = model.StatusReservedLater
			} else {
				status = model.StatusConditional
			}
		}

		appointment = &model.Appointment{
			ClientID:       client.ID,
			ClientUsername: username,
			ClientName:     client.Name,
			SlotID:         slot.ID,
			SlotLabel:      slot.Label,
			SlotStart:      slot.StartTime,
			SlotEnd:        slot.EndTime,
			ProcedureID:    procedureID,
			Status:         status,
		}

		if err := s.appointments.Create(ctx, appointment); err != nil {
			// Частичный уникальный индекс - последний рубеж против дублей
			if base.IsUniqueViolation(err) {
				return ErrDuplicateAppointment
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment submitted",
		zap.Int64("appointment_id", appointment.ID),
		zap.Int64("client_id", client.ID),
		zap.Int64("slot_id", slotID),
		zap.String("status", string(appointment.Status)),
	)

	s.notifyMaster(ctx, fmt.Sprintf("🆕 Новая заявка #%d: %s, %s", appointment.ID, appointment.ClientName, appointment.SlotLabel))

	return appointment, nil
}

// Approve подтверждает заявку: pending -> approved. Окно изымается из пула
// (терпимо к тому, что оно уже исчезло), напоминания взводятся заново.
func (s *BookingService) Approve(ctx context.Context, appointmentID int64) error {
	var appointment *model.Appointment

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.appointments.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if a == nil {
			return ErrAppointmentNotFound
		}
		if a.Status == model.StatusApproved {
			return fmt.Errorf("%w: appointment already approved", ErrInvalidTransition)
		}
		if a.Status != model.StatusPending {
			return fmt.Errorf("%w: %s -> approved", ErrInvalidTransition, a.Status)
		}

		if err := s.slots.Delete(ctx, a.SlotID); err != nil {
			return fmt.Errorf("claim slot: %w", err)
		}

		a.SlotClaimed = true
		a.Status = model.StatusApproved
		a.RemindedEve = false
		a.RemindedHour = false

		if err := s.appointments.Update(ctx, a); err != nil {
			return err
		}

		appointment = a
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Appointment approved",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("slot_id", appointment.SlotID),
	)

	s.notifyClient(ctx, appointment.ClientID, fmt.Sprintf("✅ Ваша запись на %s подтверждена!", appointment.SlotLabel))

	return nil
}

// Reject отклоняет заявку из любого незавершённого статуса.
// Изъятые этой заявкой окна возвращаются в пул insert-if-absent'ом, а повторное
// отклонение - no-op, поэтому повторный вызов не создаёт дублей и не падает.
func (s *BookingService) Reject(ctx context.Context, appointmentID int64) error {
	var appointment *model.Appointment

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.appointments.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if a == nil {
			return ErrAppointmentNotFound
		}
		if a.Status == model.StatusRejected {
			return nil
		}
		if a.Status.IsTerminal() {
			return fmt.Errorf("%w: %s -> rejected", ErrInvalidTransition, a.Status)
		}

		// Кандидат переноса удерживался с момента предложения - вернуть
		if a.Status == model.StatusMovePending && a.MoveSlotID != nil {
			if err := s.slots.CreateIfAbsent(ctx, moveSlotSnapshot(a)); err != nil {
				return fmt.Errorf("restore move candidate: %w", err)
			}
		}

		// Окно возвращает только та заявка, которая его изъяла
		if a.SlotClaimed {
			if err := s.slots.CreateIfAbsent(ctx, slotSnapshot(a)); err != nil {
				return fmt.Errorf("restore slot: %w", err)
			}
			a.SlotClaimed = false
		}

		clearMove(a)
		a.Status = model.StatusRejected

		if err := s.appointments.Update(ctx, a); err != nil {
			return err
		}

		appointment = a
		return nil
	})
	if err != nil {
		return err
	}
	if appointment == nil {
		// Заявка уже была отклонена
		return nil
	}

	s.logger.Info("Appointment rejected",
		zap.Int64("appointment_id", appointmentID),
	)

	s.notifyClient(ctx, appointment.ClientID, fmt.Sprintf("❌ Ваша запись на %s отклонена.", appointment.SlotLabel))

	return nil
}

// Complete закрывает визит как состоявшийся: approved -> completed
func (s *BookingService) Complete(ctx context.Context, appointmentID int64) error {
	return s.finish(ctx, appointmentID, model.StatusCompleted,
		"💅 Спасибо за визит! Ждём вас снова.")
}

// MarkNoShow закрывает визит как неявку: approved -> no_show
func (s *BookingService) MarkNoShow(ctx context.Context, appointmentID int64) error {
	return s.finish(ctx, appointmentID, model.StatusNoShow,
		"😔 Вы не пришли на визит. Напишите нам, если запись нужно перенести.")
}

// finish общий переход approved -> завершённый статус с записью в журнал
func (s *BookingService) finish(ctx context.Context, appointmentID int64, status model.AppointmentStatus, clientText string) error {
	var appointment *model.Appointment

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.appointments.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if a == nil {
			return ErrAppointmentNotFound
		}
		if a.Status != model.StatusApproved {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, status)
		}

		procedureLabel := "—"
		if a.ProcedureID != nil {
			procedure, err := s.procedures.GetByID(ctx, *a.ProcedureID)
			if err != nil {
				return fmt.Errorf("get procedure: %w", err)
			}
			if procedure != nil {
				procedureLabel = procedure.Name
			}
		}

		entry := &model.HistoryEntry{
			ClientID:       a.ClientID,
			ClientName:     a.ClientName,
			DateLabel:      a.SlotLabel,
			ProcedureLabel: procedureLabel,
			Outcome:        string(status),
		}
		if err := s.history.Append(ctx, entry); err != nil {
			return err
		}

		a.Status = status
		if err := s.appointments.Update(ctx, a); err != nil {
			return err
		}

		appointment = a
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Appointment closed",
		zap.Int64("appointment_id", appointmentID),
		zap.String("outcome", string(status)),
	)

	s.notifyClient(ctx, appointment.ClientID, clientText)

	return nil
}

// DeleteRecord удаляет завершённую заявку из хранилища. Чисто
// административная операция, пул окон не трогает.
func (s *BookingService) DeleteRecord(ctx context.Context, appointmentID int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.appointments.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if a == nil {
			return ErrAppointmentNotFound
		}
		if !a.Status.IsTerminal() {
			return fmt.Errorf("%w: only closed appointments can be deleted", ErrInvalidTransition)
		}

		return s.appointments.Delete(ctx, appointmentID)
	})
}

// ForcePromote переводит отложенную заявку в pending в обход условий
// планировщика: ручное решение мастера либо сработавшее правило продвижения.
func (s *BookingService) ForcePromote(ctx context.Context, appointmentID int64) error {
	var appointment *model.Appointment

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.appointments.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if a == nil {
			return ErrAppointmentNotFound
		}
		if !a.Status.IsDeferred() {
			return fmt.Errorf("%w: %s -> pending", ErrInvalidTransition, a.Status)
		}

		a.Status = model.StatusPending
		if err := s.appointments.Update(ctx, a); err != nil {
			return err
		}

		appointment = a
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Appointment promoted",
		zap.Int64("appointment_id", appointmentID),
	)

	s.notifyClient(ctx, appointment.ClientID, fmt.Sprintf("⏫ Ваша заявка на %s передана мастеру на подтверждение.", appointment.SlotLabel))
	s.notifyMaster(ctx, fmt.Sprintf("⏫ Заявка #%d (%s, %s) ждёт подтверждения.", appointment.ID, appointment.ClientName, appointment.SlotLabel))

	return nil
}

// ProposeMove предлагает клиенту перенос на другое окно.
// Кандидат сразу изымается из пула, чтобы никто не занял его, пока клиент
// думает; прежний статус запоминается для возврата.
func (s *BookingService) ProposeMove(ctx context.Context, appointmentID, candidateSlotID int64) error {
	var appointment *model.Appointment

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.appointments.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if a == nil {
			return ErrAppointmentNotFound
		}
		if a.Status != model.StatusPending && a.Status != model.StatusApproved {
			return fmt.Errorf("%w: %s -> move_pending", ErrInvalidTransition, a.Status)
		}

		candidate, err := s.slots.GetByID(ctx, candidateSlotID)
		if err != nil {
			return fmt.Errorf("get candidate slot: %w", err)
		}
		if candidate == nil {
			return ErrSlotGone
		}
		if candidate.ID == a.SlotID {
			return fmt.Errorf("%w: move to the same slot", ErrInvalidTransition)
		}

		// Пессимистическое удержание кандидата
		if err := s.slots.Delete(ctx, candidate.ID); err != nil {
			return fmt.Errorf("hold candidate slot: %w", err)
		}

		prev := a.Status
		a.MoveSlotID = &candidate.ID
		a.MoveSlotLabel = &candidate.Label
		a.MoveSlotStart = &candidate.StartTime
		a.MoveSlotEnd = &candidate.EndTime
		a.MovePrevStatus = &prev
		a.Status = model.StatusMovePending

		if err := s.appointments.Update(ctx, a); err != nil {
			return err
		}

		appointment = a
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Move proposed",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("candidate_slot_id", candidateSlotID),
	)

	s.notifyClient(ctx, appointment.ClientID, fmt.Sprintf(
		"🔁 Мастер предлагает перенести вашу запись с %s на %s.\nОтветьте /confirmmove_%d или /declinemove_%d",
		appointment.SlotLabel, *appointment.MoveSlotLabel, appointment.ID, appointment.ID,
	))

	return nil
}

// ConfirmMove применяет перенос: заявка возвращается в прежний статус уже на
// новом окне. Прежнее окно, если было изъято этой заявкой, возвращается в пул.
func (s *BookingService) ConfirmMove(ctx context.Context, appointmentID int64) error {
	var appointment *model.Appointment

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.appointments.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if a == nil {
			return ErrAppointmentNotFound
		}
		if a.Status != model.StatusMovePending || a.MovePrevStatus == nil || a.MoveSlotID == nil {
			return fmt.Errorf("%w: %s -> confirm move", ErrInvalidTransition, a.Status)
		}

		prev := *a.MovePrevStatus

		// Перенос заменяет старое удержание - вернуть прежнее окно
		if prev == model.StatusApproved && a.SlotClaimed {
			if err := s.slots.CreateIfAbsent(ctx, slotSnapshot(a)); err != nil {
				return fmt.Errorf("restore original slot: %w", err)
			}
		}

		a.SlotID = *a.MoveSlotID
		a.SlotLabel = *a.MoveSlotLabel
		a.SlotStart = *a.MoveSlotStart
		a.SlotEnd = *a.MoveSlotEnd
		// Кандидат был изъят из пула ещё при предложении переноса
		a.SlotClaimed = true
		a.Status = prev
		if prev == model.StatusApproved {
			// Время визита сменилось - напоминания заново
			a.RemindedEve = false
			a.RemindedHour = false
		}
		clearMove(a)

		if err := s.appointments.Update(ctx, a); err != nil {
			return err
		}

		appointment = a
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Move confirmed",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("slot_id", appointment.SlotID),
	)

	s.notifyClient(ctx, appointment.ClientID, fmt.Sprintf("✅ Запись перенесена на %s.", appointment.SlotLabel))
	s.notifyMaster(ctx, fmt.Sprintf("🔁 Клиент %s подтвердил перенос заявки #%d на %s.", appointment.ClientName, appointment.ID, appointment.SlotLabel))

	return nil
}

// DeclineMove отклоняет перенос: заявка остаётся на прежнем окне, удержанный
// кандидат возвращается в пул.
func (s *BookingService) DeclineMove(ctx context.Context, appointmentID int64) error {
	var appointment *model.Appointment

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.appointments.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if a == nil {
			return ErrAppointmentNotFound
		}
		if a.Status != model.StatusMovePending || a.MovePrevStatus == nil || a.MoveSlotID == nil {
			return fmt.Errorf("%w: %s -> decline move", ErrInvalidTransition, a.Status)
		}

		if err := s.slots.CreateIfAbsent(ctx, moveSlotSnapshot(a)); err != nil {
			return fmt.Errorf("restore move candidate: %w", err)
		}

		a.Status = *a.MovePrevStatus
		clearMove(a)

		if err := s.appointments.Update(ctx, a); err != nil {
			return err
		}

		appointment = a
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Move declined",
		zap.Int64("appointment_id", appointmentID),
	)

	s.notifyMaster(ctx, fmt.Sprintf("↩️ Клиент %s отклонил перенос заявки #%d, запись остаётся на %s.", appointment.ClientName, appointment.ID, appointment.SlotLabel))

	return nil
}

// ListByStatus получает заявки в данном статусе (для очередей мастера)
func (s *BookingService) ListByStatus(ctx context.Context, status model.AppointmentStatus) ([]*model.Appointment, error) {
	return s.appointments.ListByStatus(ctx, status)
}

// GetByID получает заявку по ID
func (s *BookingService) GetByID(ctx context.Context, appointmentID int64) (*model.Appointment, error) {
	return s.appointments.GetByID(ctx, appointmentID)
}

// History получает последние записи журнала визитов
func (s *BookingService) History(ctx context.Context, limit int) ([]*model.HistoryEntry, error) {
	return s.history.List(ctx, limit)
}

// notifyClient отправляет сообщение клиенту. Ошибка доставки логируется и не
// откатывает уже закоммиченный переход.
func (s *BookingService) notifyClient(ctx context.Context, clientID int64, text string) {
	if err := s.notifier.NotifyClient(ctx, clientID, text); err != nil {
		s.logger.Warn("Failed to notify client",
			zap.Int64("client_id", clientID),
			zap.Error(err))
	}
}

func (s *BookingService) notifyMaster(ctx context.Context, text string) {
	if err := s.notifier.NotifyMaster(ctx, text); err != nil {
		s.logger.Warn("Failed to notify master", zap.Error(err))
	}
}

// slotSnapshot окно для восстановления из снимка на заявке
func slotSnapshot(a *model.Appointment) *model.Slot {
	return &model.Slot{
		ID:        a.SlotID,
		Label:     a.SlotLabel,
		StartTime: a.SlotStart,
		EndTime:   a.SlotEnd,
	}
}

// moveSlotSnapshot окно-кандидат переноса из снимка на заявке
func moveSlotSnapshot(a *model.Appointment) *model.Slot {
	return &model.Slot{
		ID:        *a.MoveSlotID,
		Label:     *a.MoveSlotLabel,
		StartTime: *a.MoveSlotStart,
		EndTime:   *a.MoveSlotEnd,
	}
}

func clearMove(a *model.Appointment) {
	a.MoveSlotID = nil
	a.MoveSlotLabel = nil
	a.MoveSlotStart = nil
	a.MoveSlotEnd = nil
	a.MovePrevStatus = nil
}

// NormalizeUsername приводит ник к виду хранения: без @, в нижнем регистре
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}
