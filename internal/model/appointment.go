package model

import "time"

type AppointmentStatus string

const (
	StatusPending       AppointmentStatus = "pending"        // Ожидает решения мастера
	StatusConditional   AppointmentStatus = "conditional"    // Отложенная заявка на позднее окно, ждёт условий продвижения
	StatusReservedLater AppointmentStatus = "reserved_later" // Упрощённая отложенная заявка
	StatusApproved      AppointmentStatus = "approved"       // Подтверждено мастером, окно занято
	StatusMovePending   AppointmentStatus = "move_pending"   // Клиенту предложен перенос, ждём ответа
	StatusRejected      AppointmentStatus = "rejected"       // Отклонено
	StatusCompleted     AppointmentStatus = "completed"      // Визит состоялся
	StatusNoShow        AppointmentStatus = "no_show"        // Клиент не пришёл
)

// IsTerminal сообщает, допускает ли статус дальнейшие переходы
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusNoShow
}

// IsDeferred отложенные статусы, которые продвигает фоновый планировщик
func (s AppointmentStatus) IsDeferred() bool {
	return s == StatusConditional || s == StatusReservedLater
}

// Appointment заявка клиента на окно.
// SlotID и снимок Label/Start/End хранятся всегда: после подтверждения строка
// окна удаляется из пула, и снимок - единственный источник времени визита и
// данных для восстановления окна при отказе.
type Appointment struct {
	ID int64 `json:"id"`

	ClientID       int64  `json:"client_id"`
	ClientUsername string `json:"client_username"`
	ClientName     string `json:"client_name"`

	SlotID    int64     `json:"slot_id"`
	SlotLabel string    `json:"slot_label"`
	SlotStart time.Time `json:"slot_start"`
	SlotEnd   time.Time `json:"slot_end"`

	// SlotClaimed выставляется, когда именно эта заявка изъяла строку окна из
	// пула. Только такая заявка возвращает окно при отказе.
	SlotClaimed bool `json:"slot_claimed"`

	ProcedureID *int64 `json:"procedure_id"`

	Status AppointmentStatus `json:"status"`

	// Поля переноса заполнены только в статусе move_pending
	MoveSlotID     *int64             `json:"move_slot_id"`
	MoveSlotLabel  *string            `json:"move_slot_label"`
	MoveSlotStart  *time.Time         `json:"move_slot_start"`
	MoveSlotEnd    *time.Time         `json:"move_slot_end"`
	MovePrevStatus *AppointmentStatus `json:"move_prev_status"`

	RemindedEve  bool `json:"reminded_eve"`  // напоминание накануне вечером
	RemindedHour bool `json:"reminded_hour"` // напоминание за час

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
