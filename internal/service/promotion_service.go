package service

import (
	"context"
	"time"

	"github.com/avoronova/salon_bot/internal/model"
	"go.uber.org/zap"
)

// PromotionService фоновое продвижение отложенных заявок.
// Каждый тик берёт один снимок пула и прогоняет через него все отложенные
// заявки: никаких запросов на каждую запись, никакого read skew внутри тика.
type PromotionService struct {
	booking      *BookingService
	slots        SlotStore
	appointments AppointmentLedger
	logger       *zap.Logger

	// threshold окно до начала, раньше которого conditional не продвигается
	threshold time.Duration
	// reserveWindow упрощённое окно для reserved_later
	reserveWindow time.Duration

	now func() time.Time
}

func NewPromotionService(
	booking *BookingService,
	slots SlotStore,
	appointments AppointmentLedger,
	threshold, reserveWindow time.Duration,
	logger *zap.Logger,
) *PromotionService {
	return &PromotionService{
		booking:       booking,
		slots:         slots,
		appointments:  appointments,
		threshold:     threshold,
		reserveWindow: reserveWindow,
		logger:        logger,
		now:           time.Now,
	}
}

// poolSnapshot снимок пула открытых окон на один тик
type poolSnapshot struct {
	ids    map[int64]struct{}
	starts []time.Time
}

func newPoolSnapshot(slots []*model.Slot) *poolSnapshot {
	snap := &poolSnapshot{ids: make(map[int64]struct{}, len(slots))}
	for _, slot := range slots {
		snap.ids[slot.ID] = struct{}{}
		snap.starts = append(snap.starts, slot.StartTime)
	}
	return snap
}

func (p *poolSnapshot) contains(slotID int64) bool {
	_, ok := p.ids[slotID]
	return ok
}

// hasEarlierFree есть ли в пуле незанятое окно строго раньше t
func (p *poolSnapshot) hasEarlierFree(t time.Time) bool {
	for _, start := range p.starts {
		if start.Before(t) {
			return true
		}
	}
	return false
}

// Tick один проход продвижения. Ошибка по одной заявке логируется и не
// прерывает обработку остальных.
func (s *PromotionService) Tick(ctx context.Context) {
	open, err := s.slots.List(ctx)
	if err != nil {
		s.logger.Error("Promotion tick: failed to load slot pool", zap.Error(err))
		return
	}
	pool := newPoolSnapshot(open)

	s.processStatus(ctx, pool, model.StatusConditional, s.shouldPromoteConditional)
	s.processStatus(ctx, pool, model.StatusReservedLater, s.shouldPromoteReserved)
}

func (s *PromotionService) processStatus(
	ctx context.Context,
	pool *poolSnapshot,
	status model.AppointmentStatus,
	shouldPromote func(a *model.Appointment, pool *poolSnapshot) bool,
) {
	appointments, err := s.appointments.ListByStatus(ctx, status)
	if err != nil {
		s.logger.Error("Promotion tick: failed to list appointments",
			zap.String("status", string(status)),
			zap.Error(err))
		return
	}

	for _, a := range appointments {
		if err := s.processOne(ctx, a, pool, shouldPromote); err != nil {
			s.logger.Error("Promotion tick: failed to process appointment",
				zap.Int64("appointment_id", a.ID),
				zap.Error(err))
		}
	}
}

func (s *PromotionService) processOne(
	ctx context.Context,
	a *model.Appointment,
	pool *poolSnapshot,
	shouldPromote func(a *model.Appointment, pool *poolSnapshot) bool,
) error {
	// Окно исчезло из пула - заявку больше не на что продвигать
	if !pool.contains(a.SlotID) {
		s.logger.Info("Deferred appointment lost its slot, rejecting",
			zap.Int64("appointment_id", a.ID),
			zap.Int64("slot_id", a.SlotID))
		return s.booking.Reject(ctx, a.ID)
	}

	if !shouldPromote(a, pool) {
		return nil
	}

	return s.booking.ForcePromote(ctx, a.ID)
}

// shouldPromoteConditional правило И: подошло окно порога и все более ранние
// окна уже заняты
func (s *PromotionService) shouldPromoteConditional(a *model.Appointment, pool *poolSnapshot) bool {
	if s.now().Before(a.SlotStart.Add(-s.threshold)) {
		return false
	}
	return !pool.hasEarlierFree(a.SlotStart)
}

// shouldPromoteReserved правило ИЛИ: либо раньше ничего не осталось, либо до
// начала меньше фиксированного окна
func (s *PromotionService) shouldPromoteReserved(a *model.Appointment, pool *poolSnapshot) bool {
	if !pool.hasEarlierFree(a.SlotStart) {
		return true
	}
	return !s.now().Before(a.SlotStart.Add(-s.reserveWindow))
}
