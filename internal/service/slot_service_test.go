package service

import (
	"context"
	"testing"
	"time"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Среда, 09.09.2026 12:00 UTC
var slotBase = time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)

func newSlotService(env *testEnv) *SlotService {
	patterns := &fakePatterns{}
	svc := NewSlotService(env.slots, patterns, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return slotBase }
	return svc
}

func TestSlotCreate(t *testing.T) {
	env := newTestEnv()
	svc := newSlotService(env)
	start := slotBase.Add(24 * time.Hour)

	slot, err := svc.Create(context.Background(), "", start, start.Add(time.Hour))
	require.NoError(t, err)

	assert.NotZero(t, slot.ID)
	assert.Equal(t, "10.09 12:00", slot.Label)
}

func TestSlotCreate_Validation(t *testing.T) {
	env := newTestEnv()
	svc := newSlotService(env)
	ctx := context.Background()
	start := slotBase.Add(24 * time.Hour)

	_, err := svc.Create(ctx, "", start, start)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = svc.Create(ctx, "", start, start.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	past := slotBase.Add(-time.Hour)
	_, err = svc.Create(ctx, "", past, past.Add(time.Hour))
	assert.ErrorIs(t, err, ErrStartInPast)
}

func TestSlotCreate_Overlap(t *testing.T) {
	env := newTestEnv()
	svc := newSlotService(env)
	ctx := context.Background()
	start := slotBase.Add(24 * time.Hour)

	_, err := svc.Create(ctx, "", start, start.Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.Create(ctx, "", start.Add(30*time.Minute), start.Add(90*time.Minute))
	assert.ErrorIs(t, err, ErrSlotOverlap)

	// Стык впритык пересечением не считается
	_, err = svc.Create(ctx, "", start.Add(time.Hour), start.Add(2*time.Hour))
	assert.NoError(t, err)
}

func TestSlotGet_NotFound(t *testing.T) {
	env := newTestEnv()
	svc := newSlotService(env)

	_, err := svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestGenerateFromPatterns(t *testing.T) {
	env := newTestEnv()
	svc := newSlotService(env)
	ctx := context.Background()

	// Пятница 10:00, час
	require.NoError(t, svc.patterns.Create(ctx, &model.SchedulePattern{
		GroupID:         uuid.New(),
		Weekday:         5,
		StartHour:       10,
		StartMinute:     0,
		DurationMinutes: 60,
		IsActive:        true,
	}))

	require.NoError(t, svc.GenerateFromPatterns(ctx, 4))

	slots, err := env.slots.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.True(t, slots[0].StartTime.Equal(time.Date(2026, 9, 11, 10, 0, 0, 0, time.UTC)))
	assert.True(t, slots[3].StartTime.Equal(time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "11.09 10:00", slots[0].Label)

	// Повторная генерация не плодит дубли
	require.NoError(t, svc.GenerateFromPatterns(ctx, 4))
	slots, err = env.slots.List(ctx)
	require.NoError(t, err)
	assert.Len(t, slots, 4)
}

func TestGenerateFromPatterns_SkipsPastOccurrence(t *testing.T) {
	env := newTestEnv()
	svc := newSlotService(env)
	ctx := context.Background()

	// Среда 10:00: первое вхождение уже позади точки отсчёта
	require.NoError(t, svc.patterns.Create(ctx, &model.SchedulePattern{
		GroupID:         uuid.New(),
		Weekday:         3,
		StartHour:       10,
		StartMinute:     0,
		DurationMinutes: 60,
		IsActive:        true,
	}))

	require.NoError(t, svc.GenerateFromPatterns(ctx, 4))

	slots, err := env.slots.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.True(t, slots[0].StartTime.Equal(time.Date(2026, 9, 16, 10, 0, 0, 0, time.UTC)))
}

func TestGenerateFromPatterns_InactiveIgnored(t *testing.T) {
	env := newTestEnv()
	svc := newSlotService(env)
	ctx := context.Background()

	require.NoError(t, svc.patterns.Create(ctx, &model.SchedulePattern{
		GroupID:         uuid.New(),
		Weekday:         5,
		StartHour:       10,
		DurationMinutes: 60,
		IsActive:        false,
	}))

	require.NoError(t, svc.GenerateFromPatterns(ctx, 4))

	slots, err := env.slots.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
