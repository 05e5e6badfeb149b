package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CodePrompter supplies the out-of-band verification code when an identity
// challenge cannot be resolved automatically.
type CodePrompter interface {
	PromptCode() (string, error)
}

// ConsolePrompter reads the verification code from standard input.
type ConsolePrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewConsolePrompter creates a prompter bound to stdin/stdout.
func NewConsolePrompter() *ConsolePrompter {
	return &ConsolePrompter{In: os.Stdin, Out: os.Stdout}
}

// PromptCode blocks until a code is entered on the console.
func (p *ConsolePrompter) PromptCode() (string, error) {
	fmt.Fprint(p.Out, "Enter the verification code sent by email/SMS: ")
	reader := bufio.NewReader(p.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read verification code: %w", err)
	}
	code := strings.TrimSpace(line)
	if code == "" {
		return "", fmt.Errorf("empty verification code")
	}
	return code, nil
}
