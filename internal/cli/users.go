package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/jrsteele09/pr-admin-client/users"
	"github.com/urfave/cli/v2"
)

const timeLayout = "2006-01-02 15:04"

// UsersCommand returns the users subcommand group
func UsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage dashboard users (admin only)",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List users",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "offset", Usage: "Skip this many users"},
					&cli.IntFlag{Name: "limit", Value: 100, Usage: "Maximum users to return"},
				},
				Action: withSession(usersList),
			},
			{
				Name:  "create",
				Usage: "Create a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "Email address"},
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.StringFlag{Name: "password", Required: true, Usage: "Initial password"},
					&cli.StringFlag{Name: "role", Value: string(users.RoleViewer), Usage: "admin, editor or viewer"},
				},
				Action: withSession(usersCreate),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a user",
				ArgsUsage: "USER_ID",
				Action:    withSession(usersDelete),
			},
		},
	}
}

func usersList(c *cli.Context, s *session) error {
	list, err := s.backend.ListUsers(c.Context, c.Int("offset"), c.Int("limit"))
	if err != nil {
		return err
	}
	return s.out.print(list, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tBLOCKED\tJOINED")
		for _, u := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n", u.ID, u.Email, u.Name, u.Role, u.Blocked, u.DateJoined.Format(timeLayout))
		}
	})
}

func usersCreate(c *cli.Context, s *session) error {
	created, err := s.backend.CreateUser(c.Context, users.CreateRequest{
		Email:    c.String("email"),
		Name:     c.String("name"),
		Password: c.String("password"),
		Role:     users.RoleType(c.String("role")),
	})
	if err != nil {
		return err
	}
	return s.out.print(created, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Created user %s\t%s\t%s\n", created.ID, created.Email, created.Role)
	})
}

func usersDelete(c *cli.Context, s *session) error {
	id, err := requireArg(c, "USER_ID")
	if err != nil {
		return err
	}
	if err := s.backend.DeleteUser(c.Context, id); err != nil {
		return err
	}
	return s.out.print(map[string]string{"deleted": id}, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Deleted user %s\n", id)
	})
}

func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() < 1 || c.Args().First() == "" {
		return "", errors.New(name + " is required")
	}
	return c.Args().First(), nil
}
