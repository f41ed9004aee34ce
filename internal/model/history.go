package model

import "time"

// HistoryEntry итог визита, пишется один раз и никогда не изменяется
type HistoryEntry struct {
	ID             int64     `json:"id"`
	ClientID       int64     `json:"client_id"`
	ClientName     string    `json:"client_name"`
	DateLabel      string    `json:"date_label"`
	ProcedureLabel string    `json:"procedure_label"`
	Outcome        string    `json:"outcome"` // "completed" или "no_show"
	CreatedAt      time.Time `json:"created_at"`
}
