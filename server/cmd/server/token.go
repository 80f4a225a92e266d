package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/opsx/collab/server/internal/config"
	"github.com/opsx/collab/server/internal/crypto"
	"github.com/opsx/collab/shared/wire"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint a bearer token signed with OPSX_MASTER_SECRET",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Usage: "User or stakeholder `ID`", Required: true},
			&cli.StringFlag{Name: "name", Usage: "Display `NAME`"},
			&cli.StringFlag{Name: "role", Usage: "Default chat `ROLE`"},
			&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime; 0 never expires"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(config.Overrides{})
			if err != nil {
				return err
			}

			role := c.String("role")
			if role != "" {
				r, err := wire.ParseRole(role)
				if err != nil {
					return err
				}
				role = string(r)
			}

			m, err := crypto.NewJWTManager(cfg.MasterSecret)
			if err != nil {
				return err
			}
			token, err := m.CreateToken(c.String("user"), crypto.TokenOptions{
				Name: c.String("name"),
				Role: role,
				TTL:  c.Duration("ttl"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
