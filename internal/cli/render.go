package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// newRenderer returns a markdown renderer. Non-terminal output uses the "notty" style
// so pipes and tests get stable text.
func newRenderer(tty bool) (*glamour.TermRenderer, error) {
	if tty {
		return glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	}
	return glamour.NewTermRenderer(glamour.WithStandardStyle("notty"), glamour.WithWordWrap(100))
}

// motionMarkdown describes a motion with both bodies as fenced code blocks,
// highlighted by the motion file extension.
func motionMarkdown(index int, m domain.Motion, applied bool) string {
	state := "pending"
	if applied {
		state = "applied"
	}

	lang := strings.TrimPrefix(filepath.Ext(m.AddPath), ".")
	if lang == "add" {
		lang = ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %d. %s\n\n", index, m.Name)
	fmt.Fprintf(&b, "Version `%s`, %s.\n\n", m.VersionString(), state)
	for _, op := range []domain.Operation{domain.Forward, domain.Backward} {
		fmt.Fprintf(&b, "## %s\n\n", op)
		body := strings.TrimRight(m.Body(op), "\n")
		if body == "" {
			b.WriteString("_empty_\n\n")
			continue
		}
		fmt.Fprintf(&b, "```%s\n%s\n```\n\n", lang, body)
	}
	return b.String()
}
