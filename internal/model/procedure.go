package model

import "time"

// Procedure услуга из каталога салона
type Procedure struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"` // машинный ключ, выводится из названия
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
