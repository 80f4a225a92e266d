package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/opsx/collab/cli/internal/api"
	"github.com/opsx/collab/cli/internal/room"
	"github.com/opsx/collab/shared/wire"
)

// ChatCommand joins a project room, prints history and live messages, and
// sends each stdin line.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Join a project chat room",
		ArgsUsage: "<project>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "history",
				Usage: "Number of past messages to load",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "socket",
				Usage: "Send over the socket instead of the REST API",
			},
		},
		Action: func(c *cli.Context) error {
			project := c.Args().First()
			if project == "" {
				return fmt.Errorf("project is required")
			}
			s, err := newSession(c, true)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runChat(ctx, s, project, c.Int("history"), c.Bool("socket"), os.Stdin)
		},
	}
}

func runChat(ctx context.Context, s *session, project string, history int, viaSocket bool, in io.Reader) error {
	s.watchConnectivity()

	lines := make(chan []wire.ChatMessage, 64)
	cr, err := room.OpenChatRoom(ctx, s.ch, s.api, room.ChatConfig{
		Room:         project,
		Role:         wire.Role(s.cfg.Role),
		Name:         s.cfg.Name,
		HistoryLimit: history,
	}, func(msgs []wire.ChatMessage) {
		select {
		case lines <- msgs:
		default:
			// The printer is behind; the log still has them.
		}
	})
	if err != nil {
		return err
	}
	defer cr.Close(context.Background())

	input := make(chan string)
	go func() {
		defer close(input)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			input <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msgs := <-lines:
			printMessages(s.out, msgs)
		case text, ok := <-input:
			if !ok {
				return nil
			}
			if viaSocket {
				cr.Send(text)
				continue
			}
			if _, err := cr.Post(ctx, text); err != nil {
				reportSendError(s.out, err)
			}
		}
	}
}

func reportSendError(w io.Writer, err error) {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) && reqErr.Retryable() {
		fmt.Fprintf(w, "! not sent (%v); try again\n", err)
		return
	}
	fmt.Fprintf(w, "! not sent: %v\n", err)
}
