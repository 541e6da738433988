package cli

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	metricRefreshes = "pradmin_authclient_token_refreshes_total"
	metricQueued    = "pradmin_authclient_queued_requests_total"
	metricRetries   = "pradmin_authclient_retries_total"
)

// BurstResult summarises one burst and the refresh work it caused
type BurstResult struct {
	Requests   int            `json:"requests"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	FirstError string         `json:"first_error,omitempty"`
	Revoked    int            `json:"revoked"`
	Tokens     int            `json:"distinct_tokens"` // Token ids the backend saw during the burst
	Refreshes  map[string]int `json:"refreshes"`       // By outcome
	Queued     int            `json:"queued"`
	Retries    int            `json:"retries"`
	Elapsed    time.Duration  `json:"elapsed_ns"`
}

// BurstCommand fires concurrent requests through one client. With --revoke every token is
// invalidated first, so all of them fail together and share a single refresh.
func BurstCommand() *cli.Command {
	return &cli.Command{
		Name:  "burst",
		Usage: "Send concurrent requests to exercise the token refresh",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "n", Value: 10, Usage: "Number of concurrent requests"},
			&cli.BoolFlag{Name: "revoke", Usage: "Revoke issued tokens first (admin, DEV backend)"},
		},
		Action: withSession(burst),
	}
}

func burst(c *cli.Context, s *session) error {
	n := c.Int("n")
	if n < 1 {
		return errors.New("--n must be at least 1")
	}

	result := BurstResult{Requests: n}
	if c.Bool("revoke") {
		revoked, err := s.backend.RevokeTokens(c.Context)
		if err != nil {
			return err
		}
		result.Revoked = revoked
	}

	var (
		mu     sync.Mutex
		tokens = map[string]struct{}{}
		g      errgroup.Group
	)
	start := time.Now()
	for range n {
		g.Go(func() error {
			claims, err := s.backend.Me(c.Context)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				return err
			}
			result.Succeeded++
			tokens[claims.ID] = struct{}{}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		result.FirstError = err.Error()
	}
	result.Elapsed = time.Since(start)
	result.Tokens = len(tokens)

	if err := readRefreshMetrics(s.registry, &result); err != nil {
		return err
	}
	return s.out.print(result, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Requests:\t%d (%d ok, %d failed)\n", result.Requests, result.Succeeded, result.Failed)
		if result.FirstError != "" {
			fmt.Fprintf(tw, "First error:\t%s\n", result.FirstError)
		}
		fmt.Fprintf(tw, "Revoked tokens:\t%d\n", result.Revoked)
		fmt.Fprintf(tw, "Distinct tokens:\t%d\n", result.Tokens)
		outcomes := make([]string, 0, len(result.Refreshes))
		for outcome := range result.Refreshes {
			outcomes = append(outcomes, outcome)
		}
		sort.Strings(outcomes)
		for _, outcome := range outcomes {
			fmt.Fprintf(tw, "Refreshes (%s):\t%d\n", outcome, result.Refreshes[outcome])
		}
		fmt.Fprintf(tw, "Queued behind refresh:\t%d\n", result.Queued)
		fmt.Fprintf(tw, "Retried:\t%d\n", result.Retries)
		fmt.Fprintf(tw, "Elapsed:\t%s\n", result.Elapsed.Round(time.Millisecond))
	})
}

func readRefreshMetrics(registry prometheus.Gatherer, result *BurstResult) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	result.Refreshes = map[string]int{}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			value := int(m.GetCounter().GetValue())
			switch family.GetName() {
			case metricRefreshes:
				for _, label := range m.GetLabel() {
					if label.GetName() == "outcome" {
						result.Refreshes[label.GetValue()] += value
					}
				}
			case metricQueued:
				result.Queued += value
			case metricRetries:
				result.Retries += value
			}
		}
	}
	return nil
}
