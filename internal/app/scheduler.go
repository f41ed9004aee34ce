package app

import (
	"context"
	"time"

	"github.com/avoronova/salon_bot/internal/service"
	"go.uber.org/zap"
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	promotion *service.PromotionService
	reminders *service.ReminderService
	slots     *service.SlotService
	tick      time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(
	promotion *service.PromotionService,
	reminders *service.ReminderService,
	slots *service.SlotService,
	tick time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		promotion: promotion,
		reminders: reminders,
		slots:     slots,
		tick:      tick,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start запускает фоновые задачи. Циклы независимы: продвижение и напоминания
// идут с одним периодом, генерация окон из шаблонов - раз в сутки.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runLoop(ctx, "promotion", s.tick, s.promotion.Tick)
	go s.runLoop(ctx, "reminders", s.tick, s.reminders.Tick)
	go s.runLoop(ctx, "slot generation", 24*time.Hour, s.generateSlots)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runLoop крутит задачу с заданным периодом до остановки
func (s *Scheduler) runLoop(ctx context.Context, name string, period time.Duration, task func(ctx context.Context)) {
	// Первый запуск сразу при старте
	task(ctx)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			task(ctx)
		case <-s.stopChan:
			s.logger.Info("Background task stopped", zap.String("task", name))
			return
		case <-ctx.Done():
			s.logger.Info("Background task cancelled", zap.String("task", name))
			return
		}
	}
}

// generateSlots разворачивает шаблоны на 4 недели вперёд
func (s *Scheduler) generateSlots(ctx context.Context) {
	if err := s.slots.GenerateFromPatterns(ctx, 4); err != nil {
		s.logger.Error("Failed to generate slots", zap.Error(err))
	}
}
