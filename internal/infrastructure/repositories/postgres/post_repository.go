package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"murmurnet/internal/core/domain"
	"murmurnet/pkg/tracing"
)

type PostgresPostRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPostRepository(pool *pgxpool.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

func (r *PostgresPostRepository) Insert(ctx context.Context, authorID domain.UserID, content string) (*domain.Post, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "insert", "posts")
	defer span.End()

	post := &domain.Post{AuthorID: authorID, Content: content}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO posts (user_id, content) VALUES ($1, $2) RETURNING id, created_at`,
		int64(authorID), content,
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

// ListRecent returns the newest posts first, joined with their author's username.
func (r *PostgresPostRepository) ListRecent(ctx context.Context, limit int) ([]domain.FeedEvent, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "select", "posts")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT u.username, p.content
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 ORDER BY p.id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}
	defer rows.Close()

	events := make([]domain.FeedEvent, 0, limit)
	for rows.Next() {
		var author, content string
		if err := rows.Scan(&author, &content); err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}
		events = append(events, domain.NewPostEvent(author, content))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post rows: %w", err)
	}
	return events, nil
}
