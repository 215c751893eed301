package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gotmc/magnadc/lib/run"
)

var (
	sentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	replyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	stateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// renderEvent prints one run-log entry to stdout.
func renderEvent(e run.Event) {
	switch e.Kind {
	case run.KindState:
		fmt.Println(stateStyle.Render("== " + e.State.String()))
	case run.KindInfo:
		fmt.Println(e.Text)
	case run.KindSent:
		fmt.Println(sentStyle.Render("> " + e.Text))
	case run.KindReceived:
		fmt.Println(replyStyle.Render("< " + printable(e.Text)))
	case run.KindSample:
		fmt.Printf("logged: %.3f V, %.3f A (elapsed %s)\n",
			e.Sample.Voltage, e.Sample.Current, e.Sample.Elapsed.Round(time.Millisecond))
	case run.KindSkip:
		fmt.Println(errStyle.Render("skipped: " + e.Text))
	case run.KindError:
		fmt.Println(errStyle.Render("error: " + e.Err.Error()))
	case run.KindDone:
		fmt.Println(stateStyle.Render("-- " + e.Text))
	}
}

// printable quotes a reply that carries anything outside printable
// ASCII, so a garbled line can't mangle the terminal.
func printable(s string) string {
	clean := !strings.ContainsFunc(s, func(r rune) bool {
		return r < 32 || r > 126
	})
	if clean {
		return s
	}
	return fmt.Sprintf("%q", s)
}
