package model

import (
	"time"

	"github.com/google/uuid"
)

// SchedulePattern шаблон регулярного окна, разворачивается в слоты фоновой задачей
type SchedulePattern struct {
	ID              int64     `json:"id"`
	GroupID         uuid.UUID `json:"group_id"` // идентификатор группы связанных шаблонов
	Weekday         int       `json:"weekday"`  // 0 = Sunday, 6 = Saturday
	StartHour       int       `json:"start_hour"`
	StartMinute     int       `json:"start_minute"`
	DurationMinutes int       `json:"duration_minutes"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
