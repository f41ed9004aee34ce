package repository

import (
	"context"
	"fmt"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/avoronova/salon_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `
	id, client_id, client_username, client_name,
	slot_id, slot_label, slot_start, slot_end, slot_claimed,
	procedure_id, status,
	move_slot_id, move_slot_label, move_slot_start, move_slot_end, move_prev_status,
	reminded_eve, reminded_hour,
	created_at, updated_at`

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(pool)}
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID, &a.ClientID, &a.ClientUsername, &a.ClientName,
		&a.SlotID, &a.SlotLabel, &a.SlotStart, &a.SlotEnd, &a.SlotClaimed,
		&a.ProcedureID, &a.Status,
		&a.MoveSlotID, &a.MoveSlotLabel, &a.MoveSlotStart, &a.MoveSlotEnd, &a.MovePrevStatus,
		&a.RemindedEve, &a.RemindedHour,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create создаёт новую заявку
func (r *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			client_id, client_username, client_name,
			slot_id, slot_label, slot_start, slot_end, slot_claimed,
			procedure_id, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.DB(ctx).QueryRow(
		ctx, query,
		a.ClientID,
		a.ClientUsername,
		a.ClientName,
		a.SlotID,
		a.SlotLabel,
		a.SlotStart,
		a.SlotEnd,
		a.SlotClaimed,
		a.ProcedureID,
		a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	a, err := scanAppointment(r.DB(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return a, nil
}

// GetByIDForUpdate получает заявку по ID с блокировкой строки до конца
// транзакции. Два одновременных перехода по одной заявке сериализуются здесь.
func (r *AppointmentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`

	a, err := scanAppointment(r.DB(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment for update: %w", err)
	}

	return a, nil
}

// ListByStatus получает все заявки в данном статусе
func (r *AppointmentRepository) ListByStatus(ctx context.Context, status model.AppointmentStatus) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE status = $1 ORDER BY slot_start`

	rows, err := r.DB(ctx).Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list appointments by status: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	return appointments, nil
}

// HasActive проверяет наличие незавершённой заявки клиента на это окно
func (r *AppointmentRepository) HasActive(ctx context.Context, clientID, slotID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE client_id = $1
			  AND slot_id = $2
			  AND status NOT IN ('rejected', 'completed', 'no_show')
		)
	`

	var exists bool
	err := r.DB(ctx).QueryRow(ctx, query, clientID, slotID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active appointment: %w", err)
	}

	return exists, nil
}

// Update сохраняет изменяемые поля заявки
func (r *AppointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	query := `
		UPDATE appointments
		SET slot_id = $1, slot_label = $2, slot_start = $3, slot_end = $4, slot_claimed = $5,
		    status = $6,
		    move_slot_id = $7, move_slot_label = $8, move_slot_start = $9, move_slot_end = $10,
		    move_prev_status = $11,
		    reminded_eve = $12, reminded_hour = $13,
		    updated_at = now()
		WHERE id = $14
	`

	result, err := r.DB(ctx).Exec(
		ctx, query,
		a.SlotID, a.SlotLabel, a.SlotStart, a.SlotEnd, a.SlotClaimed,
		a.Status,
		a.MoveSlotID, a.MoveSlotLabel, a.MoveSlotStart, a.MoveSlotEnd,
		a.MovePrevStatus,
		a.RemindedEve, a.RemindedHour,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

// SetReminderEveSent отмечает напоминание накануне как отправленное
func (r *AppointmentRepository) SetReminderEveSent(ctx context.Context, id int64) error {
	query := `UPDATE appointments SET reminded_eve = true, updated_at = now() WHERE id = $1`

	if _, err := r.DB(ctx).Exec(ctx, query, id); err != nil {
		return fmt.Errorf("set eve reminder sent: %w", err)
	}
	return nil
}

// SetReminderHourSent отмечает напоминание за час как отправленное
func (r *AppointmentRepository) SetReminderHourSent(ctx context.Context, id int64) error {
	query := `UPDATE appointments SET reminded_hour = true, updated_at = now() WHERE id = $1`

	if _, err := r.DB(ctx).Exec(ctx, query, id); err != nil {
		return fmt.Errorf("set hour reminder sent: %w", err)
	}
	return nil
}

// Delete удаляет заявку
func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM appointments WHERE id = $1`

	result, err := r.DB(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}
