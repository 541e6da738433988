package sites

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Website is a publication press releases can be distributed to
type Website struct {
	ID              string    `json:"id,omitempty"`
	Name            string    `json:"name"`
	URL             string    `json:"url"`
	Category        string    `json:"category,omitempty"`
	DomainAuthority int       `json:"domain_authority,omitempty"`
	Price           float64   `json:"price,omitempty"` // Placement price in USD
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// BlockedURL is an address that must never appear in a distribution
type BlockedURL struct {
	ID        string    `json:"id,omitempty"`
	URL       string    `json:"url"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (w *Website) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("website name is required")
	}
	if _, err := NormalizeURL(w.URL); err != nil {
		return err
	}
	if w.DomainAuthority < 0 || w.DomainAuthority > 100 {
		return fmt.Errorf("domain authority %d out of range 0-100", w.DomainAuthority)
	}
	if w.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

// NormalizeURL reduces a URL to host and path so that variants of one address compare equal:
// scheme, a leading "www.", letter case of the host and trailing slashes are ignored.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return "", fmt.Errorf("invalid url %q: missing host", raw)
	}
	return host + strings.TrimRight(u.EscapedPath(), "/"), nil
}
