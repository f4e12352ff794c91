package cmdline

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		program string
		args    []string
	}{
		{"simple", "echo hello", "echo", []string{"hello"}},
		{"program only", "ls", "ls", nil},
		{"empty input", "", "", nil},
		{"whitespace only", "   \t  ", "", nil},
		{"collapses whitespace", "echo   a  \t b", "echo", []string{"a", "b"}},
		{"double quotes group", `echo "hello world" foo`, "echo", []string{"hello world", "foo"}},
		{"single quotes group", "grep 'two words' file.md", "grep", []string{"two words", "file.md"}},
		{"quotes consumed mid-token", `echo he"ll"o`, "echo", []string{"hello"}},
		{"double inside single", `echo 'say "hi"'`, "echo", []string{`say "hi"`}},
		{"single inside double", `echo "it's fine"`, "echo", []string{"it's fine"}},
		{"unterminated quote emits partial", `echo "unclosed token`, "echo", []string{"unclosed token"}},
		{"unterminated quote empty tail", `echo "`, "echo", nil},
		{"no escape handling", `echo a\b`, "echo", []string{`a\b`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, args := Split(tt.input)
			if program != tt.program {
				t.Errorf("Split(%q) program = %q, want %q", tt.input, program, tt.program)
			}
			if !reflect.DeepEqual(args, tt.args) {
				t.Errorf("Split(%q) args = %v, want %v", tt.input, args, tt.args)
			}
		})
	}
}

func TestSplitRecombination(t *testing.T) {
	// Joining program and args with single spaces reproduces the unquoted
	// token sequence for balanced input.
	program, args := Split(`echo "hello world" foo`)
	joined := program
	for _, a := range args {
		joined += " " + a
	}
	if joined != "echo hello world foo" {
		t.Errorf("recombined = %q", joined)
	}
}
