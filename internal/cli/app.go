// Package cli implements prclient, the command line admin client for the PR distribution
// backend. Every command goes through one authclient.Client, so an expired or revoked token
// is refreshed once and the failed calls are replayed.
package cli

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/pr-admin-client/internal/config"
	"github.com/jrsteele09/pr-admin-client/internal/logging"
	"github.com/urfave/cli/v2"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

const metadataConfig = "config"

// App creates the prclient application
func App() *cli.App {
	cfg := config.New()
	app := &cli.App{
		Name:    "prclient",
		Usage:   "Administer the PR distribution backend",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:   globalFlags(cfg),
		Commands: []*cli.Command{
			MeCommand(),
			DashboardCommand(),
			UsersCommand(),
			WebsitesCommand(),
			BlockedCommand(),
			ReportsCommand(),
			BurstCommand(),
		},
		Metadata: map[string]any{metadataConfig: cfg},
		Before: func(c *cli.Context) error {
			level := cfg.GetLogLevel()
			if c.Bool("verbose") {
				level = "debug"
			}
			logging.SetupWithWriter(c.App.ErrWriter, cfg.GetEnv(), level)

			if !c.Bool("no-banner") && c.String("output") == outputTable {
				fmt.Fprintln(c.App.Writer, figure.NewFigure(cfg.GetAppName(), "cybermedium", true).String())
			}
			return nil
		},
	}
	return app
}

func globalFlags(cfg config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Backend base URL",
			EnvVars: []string{"BACKEND_URL"},
			Value:   cfg.GetBackendURL(),
		},
		&cli.StringFlag{
			Name:    "identity",
			Aliases: []string{"i"},
			Usage:   "Sign-in mode: local or oidc",
			EnvVars: []string{"IDENTITY_MODE"},
			Value:   cfg.GetIdentityMode(),
		},
		&cli.StringFlag{
			Name:    "login",
			Aliases: []string{"u"},
			Usage:   "Account to sign in as",
			EnvVars: []string{"ADMIN_EMAIL"},
			Value:   cfg.GetAdminEmail(),
		},
		&cli.StringFlag{
			Name:    "login-password",
			Aliases: []string{"p"},
			Usage:   "Password for --login",
			EnvVars: []string{"ADMIN_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   outputTable,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log at debug level",
		},
		&cli.BoolFlag{
			Name:  "no-banner",
			Usage: "Do not print the banner",
		},
	}
}

// GlobalFlags holds the flags every command shares
type GlobalFlags struct {
	Backend  string
	Identity string
	Email    string
	Password string
	Output   string
}

func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Backend:  c.String("backend"),
		Identity: c.String("identity"),
		Email:    c.String("login"),
		Password: c.String("login-password"),
		Output:   c.String("output"),
	}
}

func configFrom(c *cli.Context) config.Config {
	if cfg, ok := c.App.Metadata[metadataConfig].(config.Config); ok {
		return cfg
	}
	return config.New()
}
