package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/opsx/collab/server/internal/config"
	"github.com/opsx/collab/server/internal/database"
	"github.com/opsx/collab/server/internal/debug"
)

func pruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Delete stored chat messages older than a cutoff",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Usage: "SQLite database `PATH` (overrides DATABASE_PATH)"},
			&cli.StringFlag{Name: "project", Usage: "Only prune this project `ID`"},
			&cli.DurationFlag{Name: "older-than", Usage: "Message age `DURATION`", Value: 30 * 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			overrides := config.Overrides{}
			if c.IsSet("db") {
				v := c.String("db")
				overrides.DatabasePath = &v
			}
			db, err := database.Open(config.DatabasePath(overrides))
			if err != nil {
				return err
			}
			defer db.Close()

			cutoff := time.Now().Add(-c.Duration("older-than"))
			n, err := debug.PruneChatMessages(c.Context, db.DB, c.String("project"), cutoff)
			if err != nil {
				return fmt.Errorf("failed to prune messages: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "pruned %d messages\n", n)
			return nil
		},
	}
}
