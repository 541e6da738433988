package backend

import (
	"context"
	"net/http"

	"github.com/jrsteele09/pr-admin-client/authclient"
	"github.com/jrsteele09/pr-admin-client/report"
	"golang.org/x/sync/errgroup"
)

// Dashboard is the overview shown after sign-in
type Dashboard struct {
	Users       int   `json:"users"`
	UsersHidden bool  `json:"users_hidden,omitempty"` // Caller is not allowed to list users
	Websites    int   `json:"websites"`
	BlockedURLs int   `json:"blocked_urls"`
	Reports     int   `json:"reports"`
	TotalReach  int64 `json:"total_reach"`
}

// Dashboard loads every count concurrently. A 403 on the user list only hides the user count.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := c.ListUsers(ctx, 0, 0)
		if authclient.StatusCode(err) == http.StatusForbidden {
			d.UsersHidden = true
			return nil
		}
		if err != nil {
			return err
		}
		d.Users = len(list)
		return nil
	})
	g.Go(func() error {
		list, err := c.ListWebsites(ctx)
		if err != nil {
			return err
		}
		d.Websites = len(list)
		return nil
	})
	g.Go(func() error {
		list, err := c.ListBlockedURLs(ctx)
		if err != nil {
			return err
		}
		d.BlockedURLs = len(list)
		return nil
	})
	g.Go(func() error {
		list, err := c.ListReports(ctx)
		if err != nil {
			return err
		}
		d.Reports = len(list)
		d.TotalReach = totalReach(list)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func totalReach(list []report.Meta) int64 {
	var total int64
	for _, m := range list {
		total += m.Summary.TotalReach
	}
	return total
}
