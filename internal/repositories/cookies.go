package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/shared"
)

// CookieRepository persists [models.StoredCookie] rows.
type CookieRepository struct {
	db *sql.DB
}

// NewCookieRepository creates a new [CookieRepository] with the given database connection
func NewCookieRepository(db *sql.DB) *CookieRepository {
	return &CookieRepository{db: db}
}

// Upsert inserts the cookie or replaces the value of the existing (host, name) row.
func (r *CookieRepository) Upsert(c *models.StoredCookie) error {
	if c.Host == "" || c.Name == "" {
		return fmt.Errorf("%w: cookie host and name are required", shared.ErrInvalidInput)
	}
	if c.Path == "" {
		c.Path = "/"
	}

	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = shared.GenerateID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	var expires sql.NullTime
	if c.ExpiresAt != nil {
		expires = sql.NullTime{Time: c.ExpiresAt.UTC(), Valid: true}
	}

	query := `
		INSERT INTO cookies (id, host, name, value, path, domain, secure, http_only, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(host, name) DO UPDATE SET
			value = excluded.value,
			path = excluded.path,
			domain = excluded.domain,
			secure = excluded.secure,
			http_only = excluded.http_only,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, c.ID, c.Host, c.Name, c.Value, c.Path, c.Domain, c.Secure, c.HTTPOnly, expires, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert cookie: %w", err)
	}
	return nil
}

// Get retrieves a cookie by host and name.
func (r *CookieRepository) Get(host, name string) (*models.StoredCookie, error) {
	query := `
		SELECT id, host, name, value, path, domain, secure, http_only, expires_at, created_at, updated_at
		FROM cookies
		WHERE host = ? AND name = ?
	`

	c, err := scanCookie(r.db.QueryRow(query, host, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cookie not found: %s@%s", name, host)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cookie: %w", err)
	}
	return c, nil
}

// ListByHost returns the unexpired cookies for host, oldest first.
func (r *CookieRepository) ListByHost(host string) ([]models.StoredCookie, error) {
	query := `
		SELECT id, host, name, value, path, domain, secure, http_only, expires_at, created_at, updated_at
		FROM cookies
		WHERE host = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY created_at, name
	`

	rows, err := r.db.Query(query, host, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query cookies: %w", err)
	}
	defer rows.Close()

	var cookies []models.StoredCookie
	for rows.Next() {
		c, err := scanCookie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cookie: %w", err)
		}
		cookies = append(cookies, *c)
	}
	return cookies, rows.Err()
}

// Delete removes one cookie. Missing rows are not an error.
func (r *CookieRepository) Delete(host, name string) error {
	if _, err := r.db.Exec("DELETE FROM cookies WHERE host = ? AND name = ?", host, name); err != nil {
		return fmt.Errorf("failed to delete cookie: %w", err)
	}
	return nil
}

// DeleteByHost removes every cookie for host and reports how many rows went.
func (r *CookieRepository) DeleteByHost(host string) (int64, error) {
	result, err := r.db.Exec("DELETE FROM cookies WHERE host = ?", host)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cookies: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// PurgeExpired removes cookies whose expiry has passed.
func (r *CookieRepository) PurgeExpired() (int64, error) {
	result, err := r.db.Exec("DELETE FROM cookies WHERE expires_at IS NOT NULL AND expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cookies: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCookie(row rowScanner) (*models.StoredCookie, error) {
	var (
		c       models.StoredCookie
		expires sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Host, &c.Name, &c.Value, &c.Path, &c.Domain, &c.Secure, &c.HTTPOnly, &expires, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		c.ExpiresAt = &t
	}
	return &c, nil
}
