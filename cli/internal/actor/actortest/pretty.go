package actortest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opsx/collab/cli/internal/actor"
)

// Describe renders effects one per line for assertion failure messages.
func Describe(effects []actor.Effect) string {
	var b strings.Builder
	for _, eff := range effects {
		fmt.Fprintf(&b, "%T %s\n", eff, pretty(eff))
	}
	return b.String()
}

func pretty(v any) string {
	data, err := json.Marshal(v)
	if err == nil {
		return string(data)
	}
	return fmt.Sprintf("%+v", v)
}
