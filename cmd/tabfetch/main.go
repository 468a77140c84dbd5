package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/dataops-tools/tableau-fetch/internal/config"
	"github.com/dataops-tools/tableau-fetch/tableau"
	"github.com/dataops-tools/tableau-fetch/token"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	banner("tabfetch")

	app := &cli.App{
		Name:  "tabfetch",
		Usage: "Fetch Tableau workbook metadata with Connected App credentials",
		Commands: []*cli.Command{
			{
				Name:   "workbooks",
				Usage:  "List workbooks via the REST API, optionally filtered by project",
				Action: runWorkbooks,
			},
			{
				Name:   "metadata",
				Usage:  "Query site content via the Metadata API (GraphQL)",
				Action: runMetadata,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("tabfetch failed")
		os.Exit(1)
	}
}

// signIn runs the shared front of both commands: load config, mint the
// Connected App JWT, exchange it for a session.
func signIn(c *cli.Context) (*config.Config, *tableau.Client, *tableau.Credentials, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	creator := token.NewCreator(cfg.ClientID, cfg.SecretID, token.DefaultExpiry)
	jwt, err := creator.Create(cfg.User, token.NewHMACSigner(cfg.SecretKey))
	if err != nil {
		return nil, nil, nil, err
	}

	client := tableau.NewClient(cfg)
	creds, err := client.SignIn(c.Context, jwt)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, client, creds, nil
}

func runWorkbooks(c *cli.Context) error {
	cfg, client, creds, err := signIn(c)
	if err != nil {
		return err
	}

	workbooks, err := client.Workbooks(c.Context, creds, cfg.Projects...)
	if err != nil {
		return err
	}

	log.Info().Int("count", len(workbooks)).Msg("workbooks retrieved")
	return printJSON(workbooks)
}

func runMetadata(c *cli.Context) error {
	cfg, client, creds, err := signIn(c)
	if err != nil {
		return err
	}

	sites, err := client.SiteContent(c.Context, creds, cfg.Site, cfg.Projects)
	if err != nil {
		return err
	}

	return printJSON(sites)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func banner(name string) {
	figure.NewFigure(name, "cybermedium", true).Print()
	fmt.Println()
}
