package repository

import (
	"context"

	"github.com/contacto/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactRepository defines the persistence interface for contact messages.
// It is defined here (in repository) to avoid an import cycle with service.
type ContactRepository interface {
	Save(ctx context.Context, msg *model.ContactMessage) error
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
}

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

// Save inserts a new contact_messages row and populates msg.ID and msg.CreatedAt
// from the database RETURNING clause. An empty IP is stored as NULL.
func (r *PgContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, phone, subject, message, terms, ip, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::inet, $8)
		 RETURNING id, created_at`,
		msg.Name, msg.Email, msg.Phone, msg.Subject, msg.Message, msg.Terms, msg.IP, msg.UserAgent,
	).Scan(&msg.ID, &msg.CreatedAt)
}

// List returns stored messages newest first, paginated by limit/offset.
func (r *PgContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	query := `SELECT id, name, email, phone, subject, message, terms,
	                 COALESCE(ip::text, ''), user_agent, created_at
	          FROM contact_messages
	          ORDER BY created_at DESC
	          LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.ContactMessage
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message,
			&m.Terms, &m.IP, &m.UserAgent, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
