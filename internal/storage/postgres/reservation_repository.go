package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

const reservationColumns = `r.id, r.room_id, r.room_name, r.room_capacity, r.start_time, r.end_time`

type reservationRepository struct {
	db *sql.DB
}

// NewReservationRepository создаёт PostgreSQL-реализацию ReservationRepository.
//
// Участники хранятся в reservation_students вместе со снимком имени и фамилии,
// так что бронирование читается без обращения к таблице students.
func NewReservationRepository(store *Store) domain.ReservationRepository {
	return &reservationRepository{db: store.DB()}
}

func (r *reservationRepository) Save(ctx context.Context, reservation domain.Reservation) (domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (id, room_id, room_name, room_capacity, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				room_id = EXCLUDED.room_id,
				room_name = EXCLUDED.room_name,
				room_capacity = EXCLUDED.room_capacity,
				start_time = EXCLUDED.start_time,
				end_time = EXCLUDED.end_time,
				updated_at = NOW()
		`,
			reservation.ID,
			reservation.Room.ID,
			reservation.Room.Name,
			reservation.Room.Capacity,
			reservation.StartTime.UTC(),
			reservation.EndTime.UTC(),
		); err != nil {
			return fmt.Errorf("upsert reservation: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_students WHERE reservation_id = $1`, reservation.ID); err != nil {
			return fmt.Errorf("reset reservation students: %w", err)
		}
		for i, student := range reservation.Students {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO reservation_students (reservation_id, position, student_id, first_name, last_name)
				VALUES ($1, $2, $3, $4, $5)
			`, reservation.ID, i, student.ID, student.FirstName, student.LastName); err != nil {
				return fmt.Errorf("insert reservation student: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return reservation.Clone(), nil
}

func (r *reservationRepository) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations r ORDER BY r.seq`)
}

func (r *reservationRepository) FindByID(ctx context.Context, id string) (domain.Reservation, error) {
	found, err := r.query(ctx, `SELECT `+reservationColumns+` FROM reservations r WHERE r.id = $1`, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if len(found) == 0 {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return found[0], nil
}

func (r *reservationRepository) FindByStudentID(ctx context.Context, studentID string) ([]domain.Reservation, error) {
	return r.query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		WHERE EXISTS (
			SELECT 1 FROM reservation_students rs
			WHERE rs.reservation_id = r.id AND rs.student_id = $1
		)
		ORDER BY r.seq
	`, studentID)
}

func (r *reservationRepository) FindByRoomID(ctx context.Context, roomID string) ([]domain.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations r WHERE r.room_id = $1 ORDER BY r.seq`, roomID)
}

func (r *reservationRepository) Delete(ctx context.Context, reservation domain.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// reservation_students очищается каскадом.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, reservation.ID); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

func (r *reservationRepository) FindAfterDate(ctx context.Context, date time.Time) ([]domain.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations r WHERE r.start_time > $1 ORDER BY r.seq`, date.UTC())
}

func (r *reservationRepository) FindBeforeDate(ctx context.Context, date time.Time) ([]domain.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations r WHERE r.start_time < $1 ORDER BY r.seq`, date.UTC())
}

// query читает бронирования и догружает их участников одним запросом.
func (r *reservationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select reservations: %w", err)
	}
	defer rows.Close()

	var (
		reservations []domain.Reservation
		ids          []string
	)
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID,
			&res.Room.ID,
			&res.Room.Name,
			&res.Room.Capacity,
			&res.StartTime,
			&res.EndTime,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		res.StartTime = res.StartTime.UTC()
		res.EndTime = res.EndTime.UTC()
		reservations = append(reservations, res)
		ids = append(ids, res.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	if len(ids) == 0 {
		return reservations, nil
	}

	students, err := r.loadStudents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range reservations {
		reservations[i].Students = students[reservations[i].ID]
	}
	return reservations, nil
}

func (r *reservationRepository) loadStudents(ctx context.Context, ids []string) (map[string][]domain.Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT reservation_id, student_id, first_name, last_name
		FROM reservation_students
		WHERE reservation_id = ANY($1)
		ORDER BY reservation_id, position
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select reservation students: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.Student, len(ids))
	for rows.Next() {
		var (
			reservationID string
			student       domain.Student
		)
		if err := rows.Scan(&reservationID, &student.ID, &student.FirstName, &student.LastName); err != nil {
			return nil, fmt.Errorf("scan reservation student: %w", err)
		}
		result[reservationID] = append(result[reservationID], student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation students: %w", err)
	}
	return result, nil
}

var _ domain.ReservationRepository = (*reservationRepository)(nil)
