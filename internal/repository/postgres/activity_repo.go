package postgres

import (
	"context"

	"go-resume-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type activityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) domain.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Record(ctx context.Context, entry *domain.ActivityEntry) error {
	query := `
		INSERT INTO activity_logs (user_id, action, description, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.UserID, entry.Action, entry.Description, entry.IPAddress, entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.ActivityEntry, int64, error) {
	offset := (page - 1) * limit

	query := `
		SELECT id, user_id, action, description,
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.ActivityEntry
	for rows.Next() {
		var e domain.ActivityEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Description,
			&e.IPAddress, &e.UserAgent, &e.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM activity_logs WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *activityRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM activity_logs WHERE user_id = $1`, userID)
	return err
}
