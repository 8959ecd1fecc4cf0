package database

import "time"

// QueueItem is one pending post in a platform queue. Position 0 is always
// the next item to post; an item belongs to exactly one platform queue and
// is dispatched as a single atomic unit.
type QueueItem struct {
	ID              uint      `db:"id"`
	Platform        string    `db:"platform"`
	Position        int       `db:"position"`
	Text            string    `db:"text"`
	SourceMessageID string    `db:"source_message_id"`
	EnqueuedAt      time.Time `db:"enqueued_at"`
}

// UntaggedThought is a message that carried no recognized routing tag,
// stored so the reminder task can nudge the user to tag it later.
type UntaggedThought struct {
	ID        uint      `db:"id"`
	MessageID string    `db:"message_id"`
	Content   string    `db:"content"`
	Language  string    `db:"language"`
	CreatedAt time.Time `db:"created_at"`
}
