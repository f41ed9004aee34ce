package handlers

import (
	"testing"
	"time"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandID(t *testing.T) {
	id, err := commandID("/approve_12", "/approve_")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	id, err = commandID("  /book_7 ", "/book_")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = commandID("/approve_abc", "/approve_")
	assert.Error(t, err)

	_, err = commandID("/approve_", "/approve_")
	assert.Error(t, err)
}

func TestFormatSlots(t *testing.T) {
	assert.Equal(t, "Свободных окон пока нет.", formatSlots(nil))

	text := formatSlots([]*model.Slot{
		{ID: 3, Label: "10.09 12:00", StartTime: time.Now()},
	})
	assert.Contains(t, text, "• 10.09 12:00 — /book_3")
	assert.Contains(t, text, "/later_<номер>")
}

func TestFormatAppointments(t *testing.T) {
	assert.Equal(t, "Очередь: пусто.", formatAppointments("Очередь", nil))

	text := formatAppointments("Очередь", []*model.Appointment{
		{ID: 5, ClientName: "Анна", SlotLabel: "10.09 12:00", Status: model.StatusPending},
	})
	assert.Contains(t, text, "#5 Анна — 10.09 12:00 (pending)")
}
