package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/opsx/collab/shared/wire"
)

// SendCommand posts one chat message through the REST API.
func SendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Post a chat message to a project",
		ArgsUsage: "<project> <text...>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("usage: opsx send <project> <text...>")
			}
			project := c.Args().First()
			text := strings.Join(c.Args().Tail(), " ")

			s, err := newSession(c, false)
			if err != nil {
				return err
			}
			defer s.Close()

			msg, err := s.api.SendChatMessage(c.Context, project, wire.SendChatMessageRequest{
				Message:    text,
				Role:       wire.Role(s.cfg.Role),
				AuthorName: s.cfg.Name,
			})
			if err != nil {
				reportSendError(c.App.ErrWriter, err)
				return err
			}
			fmt.Fprintln(s.out, formatMessage(msg))
			return nil
		},
	}
}
