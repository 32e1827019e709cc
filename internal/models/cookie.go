package models

import "time"

// StoredCookie is a backend session cookie persisted between CLI invocations.
type StoredCookie struct {
	ID        string     `json:"id"`
	Host      string     `json:"host"`
	Name      string     `json:"name"`
	Value     string     `json:"value"`
	Path      string     `json:"path"`
	// Domain is empty for host-only cookies.
	Domain    string     `json:"domain,omitempty"`
	Secure    bool       `json:"secure"`
	HTTPOnly  bool       `json:"http_only"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Expired reports whether the cookie has an expiry before now.
func (c StoredCookie) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}
