package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

var _ domain.FriendStore = (*FriendRepository)(nil)

const uniqueViolation = "23505"

const relationColumns = `id, sender_sub, sender_email, recipient_email, COALESCE(recipient_sub, ''), status, created_at, accepted_at`

type FriendRepository struct {
	db *Connection
}

func NewFriendRepository(db *Connection) *FriendRepository {
	return &FriendRepository{
		db: db,
	}
}

// CreateRelation relies on the partial unique index over active pairs, so
// two racing requests cannot both be stored.
func (r *FriendRepository) CreateRelation(ctx context.Context, rel *domain.FriendRelation) error {
	query := `INSERT INTO friends (id, sender_sub, sender_email, recipient_email, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		rel.ID, rel.SenderSub, rel.SenderEmail, rel.RecipientEmail, string(rel.Status), rel.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateRequest
		}
		return fmt.Errorf("failed to create relation: %w", err)
	}

	return nil
}

func (r *FriendRepository) FindActiveRelation(ctx context.Context, senderSub, recipientEmail string) (*domain.FriendRelation, error) {
	query := `SELECT ` + relationColumns + ` FROM friends
			  WHERE sender_sub = $1 AND recipient_email = $2 AND status IN ('pending', 'accepted')
			  LIMIT 1`

	return r.one(ctx, query, senderSub, recipientEmail)
}

func (r *FriendRepository) ListReceivedPending(ctx context.Context, recipientEmail string) ([]domain.FriendRelation, error) {
	query := `SELECT ` + relationColumns + ` FROM friends
			  WHERE recipient_email = $1 AND status = 'pending'
			  ORDER BY created_at, id`

	return r.list(ctx, query, recipientEmail)
}

func (r *FriendRepository) ListSentPending(ctx context.Context, senderSub string) ([]domain.FriendRelation, error) {
	query := `SELECT ` + relationColumns + ` FROM friends
			  WHERE sender_sub = $1 AND status = 'pending'
			  ORDER BY created_at, id`

	return r.list(ctx, query, senderSub)
}

func (r *FriendRepository) ListAccepted(ctx context.Context, sub, email string) ([]domain.FriendRelation, error) {
	query := `SELECT ` + relationColumns + ` FROM friends
			  WHERE status = 'accepted' AND (sender_sub = $1 OR recipient_email = $2)
			  ORDER BY created_at, id`

	return r.list(ctx, query, sub, email)
}

func (r *FriendRepository) FindAccepted(ctx context.Context, q domain.RelationQuery) (*domain.FriendRelation, error) {
	query := `SELECT ` + relationColumns + ` FROM friends
			  WHERE status = 'accepted'
			    AND ($1 = '' OR sender_email = $1)
			    AND ($2 = '' OR recipient_email = $2)
			  ORDER BY created_at, id
			  LIMIT 1`

	return r.one(ctx, query, q.SenderEmail, q.RecipientEmail)
}

// AcceptRelation is a single conditional update: of a concurrent accept and
// ignore, the first writer wins and the second gets ErrNotFound.
func (r *FriendRepository) AcceptRelation(ctx context.Context, id, recipientEmail, recipientSub string, at time.Time) error {
	query := `UPDATE friends
			  SET status = 'accepted', accepted_at = $4, recipient_sub = NULLIF($3, '')
			  WHERE id = $1 AND recipient_email = $2 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, query, id, recipientEmail, recipientSub, at)
	if err != nil {
		return fmt.Errorf("failed to accept relation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FriendRepository) DeletePendingRelation(ctx context.Context, id, recipientEmail string) error {
	query := `DELETE FROM friends WHERE id = $1 AND recipient_email = $2 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, query, id, recipientEmail)
	if err != nil {
		return fmt.Errorf("failed to delete relation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FriendRepository) one(ctx context.Context, query string, args ...interface{}) (*domain.FriendRelation, error) {
	rel, err := scanRelation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get relation: %w", err)
	}
	return &rel, nil
}

func (r *FriendRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.FriendRelation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	defer rows.Close()

	result := []domain.FriendRelation{}
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		result = append(result, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}

	return result, nil
}

func scanRelation(row pgx.Row) (domain.FriendRelation, error) {
	var (
		rel    domain.FriendRelation
		status string
	)
	err := row.Scan(&rel.ID, &rel.SenderSub, &rel.SenderEmail, &rel.RecipientEmail, &rel.RecipientSub,
		&status, &rel.CreatedAt, &rel.AcceptedAt)
	if err != nil {
		return domain.FriendRelation{}, err
	}
	rel.Status = domain.RelationStatus(status)
	return rel, nil
}
