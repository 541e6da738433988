package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/jrsteele09/pr-admin-client/sites"
	"github.com/urfave/cli/v2"
)

// WebsitesCommand returns the websites subcommand group
func WebsitesCommand() *cli.Command {
	return &cli.Command{
		Name:    "websites",
		Aliases: []string{"sites"},
		Usage:   "Manage distribution websites",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List websites",
				Action: withSession(websitesList),
			},
			{
				Name:  "create",
				Usage: "Add a website",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Usage: "Outlet name"},
					&cli.StringFlag{Name: "url", Required: true, Usage: "Website address"},
					&cli.StringFlag{Name: "category", Usage: "Category, e.g. finance"},
					&cli.IntFlag{Name: "domain-authority", Aliases: []string{"da"}, Usage: "Domain authority (0-100)"},
					&cli.Float64Flag{Name: "price", Usage: "Placement price in USD"},
				},
				Action: withSession(websitesCreate),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Remove a website",
				ArgsUsage: "WEBSITE_ID",
				Action:    withSession(websitesDelete),
			},
		},
	}
}

// BlockedCommand returns the blocked URL subcommand group
func BlockedCommand() *cli.Command {
	return &cli.Command{
		Name:  "blocked",
		Usage: "Manage the blocked URL list",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List blocked URLs",
				Action: withSession(blockedList),
			},
			{
				Name:      "add",
				Usage:     "Block a URL",
				ArgsUsage: "URL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "reason", Usage: "Why the URL is blocked"},
				},
				Action: withSession(blockedAdd),
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Unblock a URL",
				ArgsUsage: "BLOCKED_ID",
				Action:    withSession(blockedRemove),
			},
			{
				Name:      "check",
				Usage:     "Report whether a URL is blocked",
				ArgsUsage: "URL",
				Action:    withSession(blockedCheck),
			},
		},
	}
}

func websitesList(c *cli.Context, s *session) error {
	list, err := s.backend.ListWebsites(c.Context)
	if err != nil {
		return err
	}
	return s.out.print(list, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNAME\tURL\tCATEGORY\tDA\tPRICE")
		for _, w := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\n", w.ID, w.Name, w.URL, w.Category, w.DomainAuthority, w.Price)
		}
	})
}

func websitesCreate(c *cli.Context, s *session) error {
	created, err := s.backend.CreateWebsite(c.Context, &sites.Website{
		Name:            c.String("name"),
		URL:             c.String("url"),
		Category:        c.String("category"),
		DomainAuthority: c.Int("domain-authority"),
		Price:           c.Float64("price"),
	})
	if err != nil {
		return err
	}
	return s.out.print(created, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Created website %s\t%s\t%s\n", created.ID, created.Name, created.URL)
	})
}

func websitesDelete(c *cli.Context, s *session) error {
	id, err := requireArg(c, "WEBSITE_ID")
	if err != nil {
		return err
	}
	if err := s.backend.DeleteWebsite(c.Context, id); err != nil {
		return err
	}
	return s.out.print(map[string]string{"deleted": id}, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Deleted website %s\n", id)
	})
}

func blockedList(c *cli.Context, s *session) error {
	list, err := s.backend.ListBlockedURLs(c.Context)
	if err != nil {
		return err
	}
	return s.out.print(list, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tURL\tREASON\tBLOCKED AT")
		for _, b := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.URL, b.Reason, b.CreatedAt.Format(timeLayout))
		}
	})
}

func blockedAdd(c *cli.Context, s *session) error {
	rawURL, err := requireArg(c, "URL")
	if err != nil {
		return err
	}
	blocked, err := s.backend.BlockURL(c.Context, rawURL, c.String("reason"))
	if err != nil {
		return err
	}
	return s.out.print(blocked, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Blocked %s\t%s\n", blocked.URL, blocked.ID)
	})
}

func blockedRemove(c *cli.Context, s *session) error {
	id, err := requireArg(c, "BLOCKED_ID")
	if err != nil {
		return err
	}
	if err := s.backend.UnblockURL(c.Context, id); err != nil {
		return err
	}
	return s.out.print(map[string]string{"unblocked": id}, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Unblocked %s\n", id)
	})
}

func blockedCheck(c *cli.Context, s *session) error {
	rawURL, err := requireArg(c, "URL")
	if err != nil {
		return err
	}
	blocked, err := s.backend.IsBlocked(c.Context, rawURL)
	if err != nil {
		return err
	}
	result := struct {
		URL     string `json:"url"`
		Blocked bool   `json:"blocked"`
	}{URL: rawURL, Blocked: blocked}
	return s.out.print(result, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "%s\tblocked=%t\n", rawURL, blocked)
	})
}
