package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// terminalPrompt confirms destructive actions on stdin and prints blocking
// alerts to stderr.
type terminalPrompt struct {
	in        io.Reader
	out       io.Writer
	assumeYes bool
	reader    *bufio.Reader
}

func (p *terminalPrompt) Confirm(_ context.Context, prompt string) bool {
	if p.assumeYes {
		return true
	}
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	if p.reader == nil {
		p.reader = bufio.NewReader(p.in)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}

func (p *terminalPrompt) Alert(_ context.Context, message string) {
	fmt.Fprintf(p.out, "! %s\n", message)
}
