package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Record is one persisted notification delivery. Published and Updated stay
// in the feed's native string form; ReceivedAt is assigned by the database.
type Record struct {
	ID          uuid.UUID
	VideoID     string
	VideoTitle  string
	VideoLink   string
	ChannelID   string
	ChannelName string
	ChannelLink string
	Published   string
	Updated     string
	ReceivedAt  time.Time
}

// NotificationRepository defines persistence operations for received
// notifications.
type NotificationRepository interface {
	// Insert stores one notification delivery. Duplicate deliveries of the
	// same event get distinct IDs and are all kept.
	Insert(ctx context.Context, rec *Record) error

	// LatestByVideoID returns the most recently received notification for a
	// video, or ErrNotFound.
	LatestByVideoID(ctx context.Context, videoID string) (*Record, error)

	// ListByChannelID returns notifications for a channel, newest first.
	ListByChannelID(ctx context.Context, channelID string, limit int) ([]*Record, error)

	// Count returns the total number of stored notifications.
	Count(ctx context.Context) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a NotificationRepository backed by pool.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Insert(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO notifications (id, video_id, video_title, video_link, channel_id, channel_name, channel_link, published, updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING received_at
	`

	err := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.VideoID,
		rec.VideoTitle,
		rec.VideoLink,
		rec.ChannelID,
		rec.ChannelName,
		rec.ChannelLink,
		rec.Published,
		rec.Updated,
	).Scan(&rec.ReceivedAt)

	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) LatestByVideoID(ctx context.Context, videoID string) (*Record, error) {
	query := `
		SELECT id, video_id, video_title, video_link, channel_id, channel_name, channel_link, published, updated, received_at
		FROM notifications
		WHERE video_id = $1
		ORDER BY received_at DESC
		LIMIT 1
	`

	rec := &Record{}
	err := r.pool.QueryRow(ctx, query, videoID).Scan(
		&rec.ID,
		&rec.VideoID,
		&rec.VideoTitle,
		&rec.VideoLink,
		&rec.ChannelID,
		&rec.ChannelName,
		&rec.ChannelLink,
		&rec.Published,
		&rec.Updated,
		&rec.ReceivedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification by video id: %w", err)
	}

	return rec, nil
}

func (r *notificationRepository) ListByChannelID(ctx context.Context, channelID string, limit int) ([]*Record, error) {
	query := `
		SELECT id, video_id, video_title, video_link, channel_id, channel_name, channel_link, published, updated, received_at
		FROM notifications
		WHERE channel_id = $1
		ORDER BY received_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications by channel: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(
			&rec.ID,
			&rec.VideoID,
			&rec.VideoTitle,
			&rec.VideoLink,
			&rec.ChannelID,
			&rec.ChannelName,
			&rec.ChannelLink,
			&rec.Published,
			&rec.Updated,
			&rec.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return records, nil
}

func (r *notificationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}
