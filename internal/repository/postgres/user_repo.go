package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-resume-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, full_name, email, COALESCE(phone, ''), role,
		       COALESCE(avatar_url, ''), social_links, created_at, updated_at
		FROM users WHERE id = $1`

	var (
		u     domain.User
		links []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Role,
		&u.AvatarURL, &links, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(links, &u.SocialLinks); err != nil {
		return nil, fmt.Errorf("decode social links: %w", err)
	}
	return &u, nil
}

// List returns identity records joined with a digest of each account's audit
// trail for the admin overview.
func (r *userRepository) List(ctx context.Context, page, limit int) ([]domain.UserOverview, int64, error) {
	offset := (page - 1) * limit

	query := `
		SELECT u.id, u.full_name, u.email, COALESCE(u.phone, ''), u.role,
		       COALESCE(u.avatar_url, ''), u.social_links, u.created_at, u.updated_at,
		       COALESCE(a.activity_count, 0), COALESCE(a.actions, '{}')
		FROM users u
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS activity_count, array_agg(DISTINCT action) AS actions
			FROM activity_logs
			GROUP BY user_id
		) a ON a.user_id = u.id
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.UserOverview
	for rows.Next() {
		var (
			u       domain.UserOverview
			links   []byte
			actions []string
		)
		err := rows.Scan(
			&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Role,
			&u.AvatarURL, &links, &u.CreatedAt, &u.UpdatedAt,
			&u.ActivityCount, pq.Array(&actions),
		)
		if err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(links, &u.SocialLinks); err != nil {
			return nil, 0, fmt.Errorf("decode social links: %w", err)
		}
		u.RecentActions = actions
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET avatar_url = $2, updated_at = now() WHERE id = $1`, id, avatarURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	// Resume rows cascade via the FK.
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
