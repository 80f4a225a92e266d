package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/opsx/collab/shared/wire"
)

func formatMessage(m wire.ChatMessage) string {
	ts := m.Timestamp
	if t, err := time.Parse(time.RFC3339Nano, m.Timestamp); err == nil {
		ts = t.Local().Format("15:04")
	}
	author := m.AuthorName
	if author == "" {
		author = "anonymous"
	}
	tag := string(m.Role)
	if m.IsAI {
		tag = "AI"
	}
	if tag != "" {
		author = fmt.Sprintf("%s (%s)", author, tag)
	}
	if ts == "" {
		return fmt.Sprintf("%s: %s", author, m.Text)
	}
	return fmt.Sprintf("[%s] %s: %s", ts, author, m.Text)
}

func printMessages(w io.Writer, msgs []wire.ChatMessage) {
	for _, m := range msgs {
		fmt.Fprintln(w, formatMessage(m))
	}
}

func printAgents(w io.Writer, agents []wire.Agent) {
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tSTATUS\tTASK")
	for _, a := range agents {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Type, a.Name, a.Status, strings.TrimSpace(a.CurrentTask))
	}
	_ = tw.Flush()
}
