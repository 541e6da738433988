package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/jrsteele09/pr-admin-client/report"
	"github.com/urfave/cli/v2"
)

// ReportsCommand returns the distribution report subcommand group
func ReportsCommand() *cli.Command {
	return &cli.Command{
		Name:  "reports",
		Usage: "Import and view distribution reports",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List uploaded reports",
				Action: withSession(reportsList),
			},
			{
				Name:      "get",
				Usage:     "Show a report",
				ArgsUsage: "REPORT_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rows", Usage: "Include every outlet row"},
				},
				Action: withSession(reportsGet),
			},
			{
				Name:      "upload",
				Usage:     "Upload a CSV or JSON report",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Report name (defaults to the file name)"},
				},
				Action: withSession(reportsUpload),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a report",
				ArgsUsage: "REPORT_ID",
				Action:    withSession(reportsDelete),
			},
		},
	}
}

func reportsList(c *cli.Context, s *session) error {
	list, err := s.backend.ListReports(c.Context)
	if err != nil {
		return err
	}
	return s.out.print(list, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNAME\tFORMAT\tOUTLETS\tREACH\tAVG DA\tUPLOADED")
		for _, m := range list {
			printMeta(tw, m)
		}
	})
}

func reportsGet(c *cli.Context, s *session) error {
	id, err := requireArg(c, "REPORT_ID")
	if err != nil {
		return err
	}
	r, err := s.backend.GetReport(c.Context, id)
	if err != nil {
		return err
	}
	if !c.Bool("rows") {
		r.Rows = nil
	}
	return s.out.print(r, func(tw *tabwriter.Writer) {
		printReport(tw, r)
	})
}

func reportsUpload(c *cli.Context, s *session) error {
	path, err := requireArg(c, "FILE")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := s.backend.UploadReport(c.Context, filepath.Base(path), f, c.String("name"))
	if err != nil {
		return err
	}
	r.Rows = nil
	return s.out.print(r, func(tw *tabwriter.Writer) {
		printReport(tw, r)
	})
}

func reportsDelete(c *cli.Context, s *session) error {
	id, err := requireArg(c, "REPORT_ID")
	if err != nil {
		return err
	}
	if err := s.backend.DeleteReport(c.Context, id); err != nil {
		return err
	}
	return s.out.print(map[string]string{"deleted": id}, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Deleted report %s\n", id)
	})
}

func printMeta(tw *tabwriter.Writer, m report.Meta) {
	fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.1f\t%s\n", m.ID, m.Name, m.Format, m.Summary.Outlets,
		m.Summary.TotalReach, m.Summary.AverageDomainAuthority, m.UploadedAt.Format(timeLayout))
}

func printReport(tw *tabwriter.Writer, r *report.Report) {
	fmt.Fprintln(tw, "ID\tNAME\tFORMAT\tOUTLETS\tREACH\tAVG DA\tUPLOADED")
	printMeta(tw, r.Meta)
	for _, w := range r.Warnings {
		fmt.Fprintf(tw, "warning: %s\n", w)
	}
	if len(r.Rows) == 0 {
		return
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "OUTLET\tURL\tCATEGORY\tREACH\tDA\tPUBLISHED")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", row.Outlet, row.URL, row.Category, row.PotentialReach, row.DomainAuthority, row.PublishedAt)
	}
}
