package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

type roomRepository struct {
	db *sql.DB
}

// NewRoomRepository создаёт PostgreSQL-реализацию RoomRepository.
func NewRoomRepository(store *Store) domain.RoomRepository {
	return &roomRepository{db: store.DB()}
}

func (r *roomRepository) Save(ctx context.Context, room domain.Room) (domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, capacity) VALUES ($1, $2, $3)
	`, room.ID, room.Name, room.Capacity)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Room{}, fmt.Errorf("insert room %s: %w", room.ID, domain.ErrAlreadyExists)
		}
		return domain.Room{}, fmt.Errorf("insert room: %w", err)
	}
	return room, nil
}

func (r *roomRepository) FindByID(ctx context.Context, id string) (domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var room domain.Room
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, capacity FROM rooms WHERE id = $1
	`, id).Scan(&room.ID, &room.Name, &room.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("select room: %w", err)
	}
	return room, nil
}

func (r *roomRepository) FindAll(ctx context.Context) ([]domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, capacity FROM rooms ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select rooms: %w", err)
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return rooms, nil
}

func (r *roomRepository) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

func (r *roomRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, id)
}

var _ domain.RoomRepository = (*roomRepository)(nil)

func exists(ctx context.Context, db *sql.DB, query, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var found bool
	if err := db.QueryRowContext(ctx, query, id).Scan(&found); err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	return found, nil
}
