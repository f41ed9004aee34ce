package model

import "time"

// BlacklistEntry клиент, чьи заявки не принимаются
type BlacklistEntry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"` // нормализован: без @, в нижнем регистре
	CreatedAt time.Time `json:"created_at"`
}
