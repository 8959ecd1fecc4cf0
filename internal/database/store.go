package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

// EnqueueMode controls where a new item lands in a platform queue.
type EnqueueMode string

const (
	// ModeQueue appends at the tail (default).
	ModeQueue EnqueueMode = "queue"
	// ModeNow inserts at the head, making the item the next to post.
	ModeNow EnqueueMode = "now"
	// ModeNext inserts right after the current head (or at the tail when the
	// queue has at most one item).
	ModeNext EnqueueMode = "next"
)

const lastUpdateIDKey = "last_update_id"

// Store defines the data access interface for platform queues, untagged
// thoughts, and the last-seen update marker. Every mutation runs as a single
// transaction so a queue is always observed in a consistent state.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Enqueue adds an item to a platform queue according to mode. Unknown
	// platforms are created implicitly by their first enqueue.
	Enqueue(ctx context.Context, platform string, item QueueItem, mode EnqueueMode) error

	// PeekHead returns the head item of a platform queue without removing it.
	// Returns nil, nil when the queue is empty.
	PeekHead(ctx context.Context, platform string) (*QueueItem, error)

	// DequeueHead removes and returns the head item of a platform queue.
	// Returns nil, nil when the queue is empty.
	DequeueHead(ctx context.Context, platform string) (*QueueItem, error)

	// RequeueFront reinserts an item at the head of a platform queue,
	// preserving its next-attempt priority after a failed dispatch.
	RequeueFront(ctx context.Context, platform string, item QueueItem) error

	// ListQueue returns an ordered snapshot of a platform queue.
	ListQueue(ctx context.Context, platform string) ([]QueueItem, error)

	// Platforms returns the names of all platforms that currently have
	// queued items.
	Platforms(ctx context.Context) ([]string, error)

	// SaveUntagged stores a message that carried no recognized tag.
	SaveUntagged(ctx context.Context, thought *UntaggedThought) error

	// ListUntagged returns all stored untagged thoughts, oldest first.
	ListUntagged(ctx context.Context) ([]UntaggedThought, error)

	// LastUpdateID returns the persisted last-seen update marker, or 0 when
	// none has been saved yet.
	LastUpdateID(ctx context.Context) (int64, error)

	// SaveLastUpdateID persists the marker if and only if it is greater than
	// the stored value, and reports whether it was saved.
	SaveLastUpdateID(ctx context.Context, id int64) (bool, error)
}

// sqlxStore implements Store using sqlx over SQLite.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) Enqueue(ctx context.Context, platform string, item QueueItem, mode EnqueueMode) error {
	if platform == "" {
		return fmt.Errorf("enqueue requires a platform name")
	}
	if item.Text == "" {
		return fmt.Errorf("enqueue requires non-empty text")
	}
	if item.EnqueuedAt.IsZero() {
		item.EnqueuedAt = time.Now().UTC()
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM queue_items WHERE platform = ?`, platform); err != nil {
			return fmt.Errorf("count queue items: %w", err)
		}

		var position int
		switch mode {
		case ModeNow:
			if _, err := tx.ExecContext(ctx,
				`UPDATE queue_items SET position = position + 1 WHERE platform = ?`, platform); err != nil {
				return fmt.Errorf("shift queue for head insert: %w", err)
			}
			position = 0
		case ModeNext:
			if count <= 1 {
				position = count
			} else {
				if _, err := tx.ExecContext(ctx,
					`UPDATE queue_items SET position = position + 1 WHERE platform = ? AND position >= 1`, platform); err != nil {
					return fmt.Errorf("shift queue for next insert: %w", err)
				}
				position = 1
			}
		default:
			position = count
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO queue_items (platform, position, text, source_message_id, enqueued_at)
			 VALUES (?, ?, ?, ?, ?)`,
			platform, position, item.Text, item.SourceMessageID, item.EnqueuedAt); err != nil {
			return fmt.Errorf("insert queue item: %w", err)
		}

		s.logger.DebugContext(ctx, "Enqueued item",
			"platform", platform, "mode", string(mode), "position", position)
		return nil
	})
}

func (s *sqlxStore) PeekHead(ctx context.Context, platform string) (*QueueItem, error) {
	var item QueueItem
	err := s.db.GetContext(ctx, &item,
		`SELECT * FROM queue_items WHERE platform = ? ORDER BY position LIMIT 1`, platform)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("peek queue head: %w", err)
	}
	return &item, nil
}

func (s *sqlxStore) DequeueHead(ctx context.Context, platform string) (*QueueItem, error) {
	var item QueueItem
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &item,
			`SELECT * FROM queue_items WHERE platform = ? ORDER BY position LIMIT 1`, platform)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM queue_items WHERE id = ?`, item.ID); err != nil {
			return fmt.Errorf("delete queue head: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE queue_items SET position = position - 1 WHERE platform = ?`, platform); err != nil {
			return fmt.Errorf("reindex queue after dequeue: %w", err)
		}
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue head: %w", err)
	}

	s.logger.DebugContext(ctx, "Dequeued head item", "platform", platform, "id", item.ID)
	return &item, nil
}

func (s *sqlxStore) RequeueFront(ctx context.Context, platform string, item QueueItem) error {
	if item.Text == "" {
		return fmt.Errorf("requeue requires non-empty text")
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE queue_items SET position = position + 1 WHERE platform = ?`, platform); err != nil {
			return fmt.Errorf("shift queue for requeue: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO queue_items (platform, position, text, source_message_id, enqueued_at)
			 VALUES (?, 0, ?, ?, ?)`,
			platform, item.Text, item.SourceMessageID, item.EnqueuedAt); err != nil {
			return fmt.Errorf("reinsert queue item: %w", err)
		}
		s.logger.DebugContext(ctx, "Requeued item at front", "platform", platform)
		return nil
	})
}

func (s *sqlxStore) ListQueue(ctx context.Context, platform string) ([]QueueItem, error) {
	var items []QueueItem
	if err := s.db.SelectContext(ctx, &items,
		`SELECT * FROM queue_items WHERE platform = ? ORDER BY position`, platform); err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	return items, nil
}

func (s *sqlxStore) Platforms(ctx context.Context) ([]string, error) {
	var platforms []string
	if err := s.db.SelectContext(ctx, &platforms,
		`SELECT DISTINCT platform FROM queue_items ORDER BY platform`); err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	return platforms, nil
}

func (s *sqlxStore) SaveUntagged(ctx context.Context, thought *UntaggedThought) error {
	if thought == nil {
		return fmt.Errorf("cannot save nil untagged thought")
	}
	if thought.Content == "" {
		return fmt.Errorf("untagged thought must have content")
	}
	if thought.CreatedAt.IsZero() {
		thought.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO untagged_thoughts (message_id, content, language, created_at)
		 VALUES (?, ?, ?, ?)`,
		thought.MessageID, thought.Content, thought.Language, thought.CreatedAt)
	if err != nil {
		return fmt.Errorf("save untagged thought: %w", err)
	}
	return nil
}

func (s *sqlxStore) ListUntagged(ctx context.Context) ([]UntaggedThought, error) {
	var thoughts []UntaggedThought
	if err := s.db.SelectContext(ctx, &thoughts,
		`SELECT * FROM untagged_thoughts ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list untagged thoughts: %w", err)
	}
	return thoughts, nil
}

func (s *sqlxStore) LastUpdateID(ctx context.Context) (int64, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		`SELECT value FROM bot_state WHERE key = ?`, lastUpdateIDKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load last update id: %w", err)
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// A corrupt marker is treated as empty initial state, not as fatal.
		s.logger.WarnContext(ctx, "Corrupt last update marker, resetting to 0", "value", value)
		return 0, nil
	}
	return id, nil
}

func (s *sqlxStore) SaveLastUpdateID(ctx context.Context, id int64) (bool, error) {
	saved := false
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var value string
		current := int64(0)
		err := tx.GetContext(ctx, &value,
			`SELECT value FROM bot_state WHERE key = ?`, lastUpdateIDKey)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load marker: %w", err)
		}
		if err == nil {
			if parsed, perr := strconv.ParseInt(value, 10, 64); perr == nil {
				current = parsed
			}
		}

		if id <= current {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bot_state (key, value) VALUES (?, ?)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
			lastUpdateIDKey, strconv.FormatInt(id, 10)); err != nil {
			return fmt.Errorf("save marker: %w", err)
		}
		saved = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("save last update id: %w", err)
	}
	return saved, nil
}

// inTx runs fn inside a transaction with rollback on error.
func (s *sqlxStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
