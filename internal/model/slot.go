package model

import "time"

// Slot свободное окно в расписании мастера.
// Пул содержит только открытые окна: занятое окно удаляется из таблицы,
// а его снимок остаётся на записи клиента.
type Slot struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"` // человекочитаемая подпись, например "05.09 14:00"
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}
