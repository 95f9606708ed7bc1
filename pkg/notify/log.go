package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/FACorreiaa/afa-daily-reports/pkg/db"
)

// Notification is one attempted email
type Notification struct {
	ID         uuid.UUID
	Kind       Kind
	Subject    string
	Recipients []string
	Sent       bool
	Error      string
}

// Log records sent and failed notifications
type Log interface {
	Record(ctx context.Context, n *Notification) error
}

// PostgresLog implements Log using PostgreSQL
type PostgresLog struct {
	db db.Querier
}

// NewPostgresLog creates a notification log
func NewPostgresLog(q db.Querier) *PostgresLog {
	return &PostgresLog{db: q}
}

// Record inserts n
func (l *PostgresLog) Record(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	var errText *string
	if n.Error != "" {
		errText = &n.Error
	}

	_, err := l.db.Exec(ctx, `
		INSERT INTO notifications (id, kind, subject, recipients, sent, error)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, string(n.Kind), n.Subject, n.Recipients, n.Sent, errText,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}
