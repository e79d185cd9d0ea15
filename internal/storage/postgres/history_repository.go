package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository создаёт PostgreSQL-реализацию HistoryRepository.
func NewHistoryRepository(store *Store) domain.HistoryRepository {
	return &historyRepository{db: store.DB()}
}

func (r *historyRepository) Append(ctx context.Context, entry domain.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reservation_history (reservation_id, type, reason, occurred)
		VALUES ($1, $2, $3, $4)
	`, entry.ReservationID, entry.Type, entry.Reason, entry.Occurred.UTC())
	if err != nil {
		return fmt.Errorf("append reservation history: %w", err)
	}
	return nil
}

func (r *historyRepository) List(ctx context.Context, reservationID string) ([]domain.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT reservation_id, type, reason, occurred
		FROM reservation_history
		WHERE reservation_id = $1
		ORDER BY occurred, id
	`, reservationID)
	if err != nil {
		return nil, fmt.Errorf("list reservation history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(&entry.ReservationID, &entry.Type, &entry.Reason, &entry.Occurred); err != nil {
			return nil, fmt.Errorf("scan reservation history: %w", err)
		}
		entry.Occurred = entry.Occurred.UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation history: %w", err)
	}
	return entries, nil
}

var _ domain.HistoryRepository = (*historyRepository)(nil)
