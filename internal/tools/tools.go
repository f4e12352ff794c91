// Package tools holds the shell-tool wrappers exposed to command
// handlers: binary existence checks and markdown search. They treat
// non-zero exit codes as application-level outcomes, not faults.
package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/smazurov/procex/internal/logging"
	"github.com/smazurov/procex/internal/process"
)

const toolTimeout = 10 * time.Second

// Which reports whether a binary exists on PATH, and its resolved path
// when it does.
func Which(name string) (string, bool) {
	res, err := process.Execute("which "+name, &process.Options{
		Timeout: toolTimeout,
		Logger:  logging.GetLogger("tools"),
	})
	if err != nil || !res.Ok() {
		return "", false
	}
	return strings.TrimSpace(string(res.Stdout)), true
}

// SearchMarkdown greps markdown files under dir for pattern and returns
// the matching lines. No matches is an empty result, not an error; only
// a grep failure (missing binary, unreadable dir) is.
func SearchMarkdown(pattern, dir string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("empty search pattern")
	}
	if dir == "" {
		dir = "."
	}

	h, err := process.Spawn("grep", []string{"-rn", "--include=*.md", "--", pattern, dir}, &process.Options{
		Timeout: toolTimeout,
		Logger:  logging.GetLogger("tools"),
	}, nil)
	if err != nil {
		return "", err
	}

	res := h.Wait()
	switch res.Code(2) {
	case 0:
		return string(res.Stdout), nil
	case 1:
		// grep exit 1 means no matches.
		return "", nil
	default:
		return "", fmt.Errorf("search failed: %s", strings.TrimSpace(string(res.Stderr)))
	}
}
