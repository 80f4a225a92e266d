package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/opsx/collab/cli/internal/room"
	"github.com/opsx/collab/shared/wire"
)

// AgentsCommand shows the agents of a project and follows their status.
func AgentsCommand() *cli.Command {
	return &cli.Command{
		Name:      "agents",
		Usage:     "Show live agent status for a project",
		ArgsUsage: "<project>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Print the current table and exit",
			},
		},
		Action: func(c *cli.Context) error {
			project := c.Args().First()
			if project == "" {
				return fmt.Errorf("project is required")
			}
			s, err := newSession(c, !c.Bool("once"))
			if err != nil {
				return err
			}
			defer s.Close()

			if c.Bool("once") {
				agents, err := s.api.GetAgents(c.Context, project)
				if err != nil {
					return err
				}
				printAgents(s.out, agents)
				return nil
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAgents(ctx, s, project)
		},
	}
}

func runAgents(ctx context.Context, s *session, project string) error {
	s.watchConnectivity()

	changed := make(chan struct{}, 1)
	board, err := room.OpenAgentBoard(ctx, s.ch, s.api, room.BoardConfig{
		Project:      project,
		PollInterval: s.cfg.PollInterval,
	}, func(wire.Agent) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer board.Close(context.Background())

	printAgents(s.out, board.Agents())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			fmt.Fprintln(s.out)
			printAgents(s.out, board.Agents())
		}
	}
}
