package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
)

// MeCommand shows who the backend thinks is signed in
func MeCommand() *cli.Command {
	return &cli.Command{
		Name:   "me",
		Usage:  "Show the signed-in account as seen by the backend",
		Action: withSession(me),
	}
}

// DashboardCommand prints the overview counts
func DashboardCommand() *cli.Command {
	return &cli.Command{
		Name:   "dashboard",
		Usage:  "Show the admin overview",
		Action: withSession(dashboard),
	}
}

func me(c *cli.Context, s *session) error {
	claims, err := s.backend.Me(c.Context)
	if err != nil {
		return err
	}
	return s.out.print(claims, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Subject:\t%s\n", claims.Subject)
		fmt.Fprintf(tw, "Email:\t%s\n", claims.Email)
		fmt.Fprintf(tw, "Role:\t%s\n", claims.Role)
		fmt.Fprintf(tw, "Expires:\t%s\n", claims.ExpiresAt.Format(timeLayout))
	})
}

func dashboard(c *cli.Context, s *session) error {
	d, err := s.backend.Dashboard(c.Context)
	if err != nil {
		return err
	}
	return s.out.print(d, func(tw *tabwriter.Writer) {
		if d.UsersHidden {
			fmt.Fprintln(tw, "Users:\t-")
		} else {
			fmt.Fprintf(tw, "Users:\t%d\n", d.Users)
		}
		fmt.Fprintf(tw, "Websites:\t%d\n", d.Websites)
		fmt.Fprintf(tw, "Blocked URLs:\t%d\n", d.BlockedURLs)
		fmt.Fprintf(tw, "Reports:\t%d\n", d.Reports)
		fmt.Fprintf(tw, "Total reach:\t%d\n", d.TotalReach)
	})
}
