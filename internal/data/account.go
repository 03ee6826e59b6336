package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// accountRepo implements the Account repository
type accountRepo struct {
	db *sql.DB
}

// NewAccountRepo creates a new Account repository
func NewAccountRepo(dbPath string) (repo.AccountRepo, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create tables
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			dm_channel TEXT NOT NULL DEFAULT '',
			pending TEXT NOT NULL DEFAULT '',
			credentials TEXT NOT NULL DEFAULT '',
			cred_version INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create accounts table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scheduled_items (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			subject TEXT NOT NULL,
			day TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create scheduled_items table: %w", err)
	}

	// Create index
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scheduled_items_account ON scheduled_items(account_id, created_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &accountRepo{db: db}, nil
}

const accountColumns = `id, dm_channel, pending, credentials, cred_version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var acc domain.Account
	var pending, creds string
	var version, createdAt, updatedAt int64
	if err := row.Scan(&acc.ID, &acc.DMChannel, &pending, &creds, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	acc.CreatedAt = time.Unix(createdAt, 0)
	acc.UpdatedAt = time.Unix(updatedAt, 0)

	if creds != "" {
		var c domain.Credentials
		if err := json.Unmarshal([]byte(creds), &c); err != nil {
			return nil, fmt.Errorf("failed to decode credentials of %s: %w", acc.ID, err)
		}
		c.Version = version
		acc.Credentials = &c
	}

	p, err := domain.DecodePending([]byte(pending))
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", acc.ID, err)
	}
	acc.Pending = p

	return &acc, nil
}

// Get gets an account by ID
func (r *accountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, accountID)

	acc, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return acc, nil
}

// Create inserts an account unless it exists
func (r *accountRepo) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO accounts (id, dm_channel, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`,
		account.ID,
		account.DMChannel,
		account.CreatedAt.Unix(),
		account.UpdatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return r.Get(ctx, account.ID)
}

// SetDMChannel updates the direct message channel
func (r *accountRepo) SetDMChannel(ctx context.Context, accountID, channelID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET dm_channel = ?, updated_at = ? WHERE id = ?
	`, channelID, time.Now().Unix(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update dm channel: %w", err)
	}
	return nil
}

// SetPending stores or clears the pending action
func (r *accountRepo) SetPending(ctx context.Context, accountID string, pending domain.PendingAction) error {
	data, err := domain.EncodePending(pending)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET pending = ?, updated_at = ? WHERE id = ?
	`, string(data), time.Now().Unix(), accountID)
	if err != nil {
		return fmt.Errorf("failed to set pending action: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// UpdateCredentials replaces credentials if the version still matches
func (r *accountRepo) UpdateCredentials(ctx context.Context, accountID string, expectedVersion int64, creds *domain.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET credentials = ?, cred_version = cred_version + 1, updated_at = ?
		WHERE id = ? AND cred_version = ?
	`, string(data), time.Now().Unix(), accountID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update credentials: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update credentials: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Nothing matched: either the account is gone or the version moved on
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE id = ?`, accountID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check account: %w", err)
	}
	if exists == 0 {
		return domain.ErrAccountNotFound
	}
	return domain.ErrStaleCredentials
}

// AddItem stores a scheduled item, assigning an ID when missing
func (r *accountRepo) AddItem(ctx context.Context, item *domain.ScheduledItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduled_items (id, account_id, kind, subject, day, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		item.ID,
		item.AccountID,
		item.Kind,
		item.Subject,
		item.Day.String(),
		item.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to add scheduled item: %w", err)
	}
	return nil
}

// ListItems lists scheduled items of an account
func (r *accountRepo) ListItems(ctx context.Context, accountID string) ([]*domain.ScheduledItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, kind, subject, day, created_at
		FROM scheduled_items
		WHERE account_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled items: %w", err)
	}
	defer rows.Close()

	var items []*domain.ScheduledItem
	for rows.Next() {
		var item domain.ScheduledItem
		var day string
		var createdAt int64
		if err := rows.Scan(&item.ID, &item.AccountID, &item.Kind, &item.Subject, &day, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled item: %w", err)
		}
		item.Day, _ = domain.ParseDate(day)
		item.CreatedAt = time.Unix(0, createdAt)
		items = append(items, &item)
	}
	return items, rows.Err()
}

// ListAll lists all accounts
func (r *accountRepo) ListAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// Close closes the database
func (r *accountRepo) Close() error {
	return r.db.Close()
}
