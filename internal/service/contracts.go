package service

import (
	"context"
	"time"

	"github.com/avoronova/salon_bot/internal/model"
)

// TxRunner запускает функцию в транзакции хранилища
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotStore пул открытых окон
type SlotStore interface {
	Create(ctx context.Context, slot *model.Slot) error
	CreateIfAbsent(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	List(ctx context.Context) ([]*model.Slot, error)
	Earliest(ctx context.Context) (*model.Slot, error)
	Delete(ctx context.Context, id int64) error
	HasOverlap(ctx context.Context, start, end time.Time) (bool, error)
	SlotExists(ctx context.Context, startTime time.Time) (bool, error)
}

// AppointmentLedger хранилище заявок, без бизнес-правил
type AppointmentLedger interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Appointment, error)
	ListByStatus(ctx context.Context, status model.AppointmentStatus) ([]*model.Appointment, error)
	HasActive(ctx context.Context, clientID, slotID int64) (bool, error)
	Update(ctx context.Context, a *model.Appointment) error
	SetReminderEveSent(ctx context.Context, id int64) error
	SetReminderHourSent(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// HistoryLog журнал итогов визитов
type HistoryLog interface {
	Append(ctx context.Context, entry *model.HistoryEntry) error
	List(ctx context.Context, limit int) ([]*model.HistoryEntry, error)
}

// BlacklistGate проверка чёрного списка
type BlacklistGate interface {
	IsBlacklisted(ctx context.Context, username string) (bool, error)
}

// ProcedureCatalog каталог услуг
type ProcedureCatalog interface {
	Create(ctx context.Context, p *model.Procedure) error
	GetByID(ctx context.Context, id int64) (*model.Procedure, error)
	GetByKey(ctx context.Context, key string) (*model.Procedure, error)
	GetActive(ctx context.Context) ([]*model.Procedure, error)
	KeyExists(ctx context.Context, key string) (bool, error)
}

// PatternSource шаблоны регулярных окон
type PatternSource interface {
	Create(ctx context.Context, p *model.SchedulePattern) error
	GetAllActive(ctx context.Context) ([]*model.SchedulePattern, error)
	GetByID(ctx context.Context, id int64) (*model.SchedulePattern, error)
	Deactivate(ctx context.Context, id int64) error
}

// Notifier отправка сообщений клиенту и мастеру
type Notifier interface {
	NotifyClient(ctx context.Context, chatID int64, text string) error
	NotifyMaster(ctx context.Context, text string) error
}
