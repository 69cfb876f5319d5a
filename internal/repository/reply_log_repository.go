package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/line-menu-bot/internal/domain"
)

// ReplyLogRepository persists reply audit entries.
type ReplyLogRepository interface {
	Create(ctx context.Context, entry *domain.ReplyLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.ReplyLog, error)
}

type replyLogRepository struct {
	pool *pgxpool.Pool
}

// NewReplyLogRepository constructs repository. A nil pool yields a no-op repository.
func NewReplyLogRepository(pool *pgxpool.Pool) ReplyLogRepository {
	if pool == nil {
		return noopReplyLogRepository{}
	}
	return &replyLogRepository{pool: pool}
}

func (r *replyLogRepository) Create(ctx context.Context, entry *domain.ReplyLog) error {
	const query = `
        INSERT INTO reply_logs (reply_token, message_types, message_count, status, error)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ReplyToken,
		entry.MessageTypes,
		entry.MessageCount,
		entry.Status,
		entry.Error,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *replyLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.ReplyLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `
        SELECT id, reply_token, message_types, message_count, status, error, created_at
        FROM reply_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.ReplyLog, 0, limit)
	for rows.Next() {
		var entry domain.ReplyLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ReplyToken,
			&entry.MessageTypes,
			&entry.MessageCount,
			&entry.Status,
			&entry.Error,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

type noopReplyLogRepository struct{}

func (noopReplyLogRepository) Create(context.Context, *domain.ReplyLog) error { return nil }

func (noopReplyLogRepository) ListRecent(context.Context, int) ([]domain.ReplyLog, error) {
	return []domain.ReplyLog{}, nil
}
