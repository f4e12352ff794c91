// Package cmdline splits raw command strings into a program and its
// arguments. It understands single and double quote grouping but none of
// the other shell metacharacters: no globbing, no pipes, no redirection,
// no backslash escapes. Callers that need real shell semantics should run
// the command through a shell instead.
package cmdline

import "strings"

// Split breaks a command string into a program name and argument list.
//
// Unquoted spaces and tabs separate tokens, with consecutive whitespace
// collapsed. A single or double quote starts a quoted span that runs
// until the matching quote character; the quotes themselves are not part
// of the token. An unterminated quote is not an error: the partial token
// is emitted as-is. Empty input returns ("", nil).
func Split(command string) (string, []string) {
	var tokens []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	for _, r := range command {
		switch {
		case inQuote && r == quoteChar:
			inQuote = false
			quoteChar = 0
		case !inQuote && (r == '"' || r == '\''):
			inQuote = true
			quoteChar = r
		case !inQuote && (r == ' ' || r == '\t'):
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	if len(tokens) == 0 {
		return "", nil
	}
	if len(tokens) == 1 {
		return tokens[0], nil
	}
	return tokens[0], tokens[1:]
}
