package logger

import (
	"io"
	"strings"
	"sync"
)

// GitHubPrinter writes messages as GitHub Actions workflow commands, so the
// runner can colour them, hide debug output unless step debugging is on,
// and turn warnings and errors into annotations.
//
// See https://docs.github.com/en/actions/using-workflows/workflow-commands-for-github-actions
type GitHubPrinter struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewGitHubPrinter(w io.Writer) *GitHubPrinter {
	return &GitHubPrinter{writer: w}
}

var commandEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

func (p *GitHubPrinter) Print(level Level, msg string, fields Fields) {
	var line strings.Builder

	switch level {
	case DEBUG:
		line.WriteString("::debug::")
	case WARN:
		line.WriteString("::warning::")
	case ERROR, FATAL:
		line.WriteString("::error::")
	}

	// Plain lines are printed as is; only command data needs escaping.
	if line.Len() > 0 {
		msg = commandEscaper.Replace(msg)
	}
	line.WriteString(msg)

	for _, field := range fields {
		line.WriteString(" " + field.Key() + "=" + field.String())
	}
	line.WriteString("\n")

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.writer, line.String())
}
