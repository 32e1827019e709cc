package repositories

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/undertone/internal/models"
)

// PersistentJar is an [http.CookieJar] backed by a [cookiejar.Jar] in memory and
// a [CookieRepository] on disk. Writes go through to the repository.
type PersistentJar struct {
	jar    *cookiejar.Jar
	repo   *CookieRepository
	logger *log.Logger
}

// NewPersistentJar creates a jar and loads the stored cookies of each origin into it.
func NewPersistentJar(repo *CookieRepository, logger *log.Logger, origins ...*url.URL) (*PersistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	j := &PersistentJar{jar: jar, repo: repo, logger: logger}
	for _, u := range origins {
		if err := j.load(u); err != nil {
			return nil, err
		}
	}
	return j, nil
}

func (j *PersistentJar) load(u *url.URL) error {
	stored, err := j.repo.ListByHost(u.Hostname())
	if err != nil {
		return err
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		c := &http.Cookie{Name: s.Name, Value: s.Value, Path: s.Path, Domain: s.Domain, Secure: s.Secure, HttpOnly: s.HTTPOnly}
		if s.ExpiresAt != nil {
			c.Expires = *s.ExpiresAt
		}
		cookies = append(cookies, c)
	}
	if len(cookies) > 0 {
		j.jar.SetCookies(u, cookies)
		j.logger.Debug("restored cookies", "host", u.Hostname(), "count", len(cookies))
	}
	return nil
}

// SetCookies implements [http.CookieJar]. Deletions (negative MaxAge or past expiry)
// remove the stored row; repository failures are logged since the interface has no error.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)

	now := time.Now()
	host := u.Hostname()
	for _, c := range cookies {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) || c.Value == "" {
			if err := j.repo.Delete(host, c.Name); err != nil {
				j.logger.Warn("failed to delete cookie", "host", host, "name", c.Name, "error", err)
			}
			continue
		}

		stored := &models.StoredCookie{
			Host: host, Name: c.Name, Value: c.Value, Path: c.Path,
			Domain: c.Domain, Secure: c.Secure, HTTPOnly: c.HttpOnly,
		}
		switch {
		case c.MaxAge > 0:
			exp := now.Add(time.Duration(c.MaxAge) * time.Second)
			stored.ExpiresAt = &exp
		case !c.Expires.IsZero():
			exp := c.Expires
			stored.ExpiresAt = &exp
		}
		if err := j.repo.Upsert(stored); err != nil {
			j.logger.Warn("failed to persist cookie", "host", host, "name", c.Name, "error", err)
		}
	}
}

// Cookies implements [http.CookieJar].
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// Clear forgets every cookie for u's host, in memory and on disk.
func (j *PersistentJar) Clear(u *url.URL) error {
	for _, c := range j.jar.Cookies(u) {
		j.jar.SetCookies(u, []*http.Cookie{{Name: c.Name, Path: "/", MaxAge: -1}})
	}
	_, err := j.repo.DeleteByHost(u.Hostname())
	return err
}

var _ http.CookieJar = (*PersistentJar)(nil)
