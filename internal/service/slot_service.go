package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/avoronova/salon_bot/internal/repository/base"
	"go.uber.org/zap"
)

// SlotService операции над пулом окон: валидация, создание, удаление,
// разворачивание шаблонов регулярного расписания.
type SlotService struct {
	slots    SlotStore
	patterns PatternSource
	location *time.Location
	logger   *zap.Logger

	now func() time.Time
}

func NewSlotService(slots SlotStore, patterns PatternSource, location *time.Location, logger *zap.Logger) *SlotService {
	return &SlotService{
		slots:    slots,
		patterns: patterns,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// Create создаёт окно после проверок: конец позже начала, начало в будущем,
// интервал не пересекается с существующими окнами. Гонку двух одновременных
// создателей окончательно разрешает exclusion constraint в БД.
func (s *SlotService) Create(ctx context.Context, label string, start, end time.Time) (*model.Slot, error) {
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}
	if !start.After(s.now()) {
		return nil, ErrStartInPast
	}

	overlap, err := s.slots.HasOverlap(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	if overlap {
		return nil, ErrSlotOverlap
	}

	if label == "" {
		label = FormatSlotLabel(start, s.location)
	}

	slot := &model.Slot{
		Label:     label,
		StartTime: start,
		EndTime:   end,
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		if base.IsExclusionViolation(err) {
			return nil, ErrSlotOverlap
		}
		return nil, err
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.String("label", slot.Label),
		zap.Time("start", start),
	)

	return slot, nil
}

// Delete удаляет окно, отсутствующее - no-op
func (s *SlotService) Delete(ctx context.Context, slotID int64) error {
	return s.slots.Delete(ctx, slotID)
}

// List получает все открытые окна по возрастанию начала
func (s *SlotService) List(ctx context.Context) ([]*model.Slot, error) {
	return s.slots.List(ctx)
}

// Earliest получает ближайшее окно
func (s *SlotService) Earliest(ctx context.Context) (*model.Slot, error) {
	return s.slots.Earliest(ctx)
}

// Get получает окно по ID
func (s *SlotService) Get(ctx context.Context, slotID int64) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}

// GenerateFromPatterns разворачивает все активные шаблоны в окна на weeksAhead
// недель вперёд. Уже существующие и пересекающиеся окна пропускаются, одна
// плохая позиция не прерывает генерацию.
func (s *SlotService) GenerateFromPatterns(ctx context.Context, weeksAhead int) error {
	patterns, err := s.patterns.GetAllActive(ctx)
	if err != nil {
		return fmt.Errorf("get active patterns: %w", err)
	}

	totalCount := 0
	for _, pattern := range patterns {
		count, err := s.generateForPattern(ctx, pattern, weeksAhead)
		if err != nil {
			s.logger.Error("Failed to generate slots for pattern",
				zap.Error(err),
				zap.Int64("pattern_id", pattern.ID),
			)
			continue
		}
		totalCount += count
	}

	s.logger.Info("Generated slots from patterns",
		zap.Int("total_patterns", len(patterns)),
		zap.Int("total_slots_created", totalCount),
	)

	return nil
}

// generateForPattern создаёт окна одного шаблона
func (s *SlotService) generateForPattern(ctx context.Context, pattern *model.SchedulePattern, weeksAhead int) (int, error) {
	now := s.now().In(s.location)
	created := 0

	for week := 0; week < weeksAhead; week++ {
		start := nextWeekdayStart(now, pattern, week)
		if !start.After(now) {
			continue
		}
		end := start.Add(time.Duration(pattern.DurationMinutes) * time.Minute)

		exists, err := s.slots.SlotExists(ctx, start)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		overlap, err := s.slots.HasOverlap(ctx, start, end)
		if err != nil {
			return created, err
		}
		if overlap {
			continue
		}

		slot := &model.Slot{
			Label:     FormatSlotLabel(start, s.location),
			StartTime: start,
			EndTime:   end,
		}
		if err := s.slots.Create(ctx, slot); err != nil {
			if base.IsExclusionViolation(err) {
				// Параллельная генерация успела первой
				continue
			}
			return created, err
		}
		created++
	}

	return created, nil
}

// nextWeekdayStart начало окна шаблона через week недель от точки отсчёта
func nextWeekdayStart(from time.Time, pattern *model.SchedulePattern, week int) time.Time {
	daysAhead := (pattern.Weekday - int(from.Weekday()) + 7) % 7
	day := from.AddDate(0, 0, daysAhead+week*7)
	return time.Date(day.Year(), day.Month(), day.Day(), pattern.StartHour, pattern.StartMinute, 0, 0, from.Location())
}

// FormatSlotLabel человекочитаемая подпись окна в зоне салона
func FormatSlotLabel(start time.Time, location *time.Location) string {
	return start.In(location).Format("02.01 15:04")
}
