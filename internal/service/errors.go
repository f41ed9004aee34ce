package service

import "errors"

// Ошибки валидации
var (
	// ErrInvalidInterval возвращается, когда конец окна не позже начала
	ErrInvalidInterval = errors.New("slot end must be after start")

	// ErrStartInPast возвращается при попытке создать окно в прошлом
	ErrStartInPast = errors.New("slot start must be in the future")

	// ErrSlotOverlap возвращается, когда интервал пересекается с существующим окном
	ErrSlotOverlap = errors.New("slot overlaps an existing slot")
)

// Ошибки конфликтов
var (
	// ErrSlotGone возвращается, когда окно уже занято или удалено
	ErrSlotGone = errors.New("slot is gone")

	// ErrDuplicateAppointment возвращается при повторной активной заявке на то же окно
	ErrDuplicateAppointment = errors.New("active appointment for this slot already exists")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Ошибки отсутствия
var (
	// ErrAppointmentNotFound возвращается, когда заявка не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotNotFound возвращается, когда окно не найдено
	ErrSlotNotFound = errors.New("slot not found")

	// ErrProcedureNotFound возвращается, когда услуга не найдена
	ErrProcedureNotFound = errors.New("procedure not found")
)

// Ошибки доступа
var (
	// ErrBlacklisted возвращается для клиентов из чёрного списка
	ErrBlacklisted = errors.New("client is blacklisted")
)
