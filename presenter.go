package main

import (
	"bufio"
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"fmt"
	"io"
	"strings"
)

// presenter prints controller output. Content goes to out, everything else
// to errOut so slot content can be piped.
type presenter struct {
	out    io.Writer
	errOut io.Writer
	failed int
}

func newPresenter(out, errOut io.Writer) *presenter {
	return &presenter{out: out, errOut: errOut}
}

func (p *presenter) DrivesUpdated(drives []picoclip.Drive) {
	if len(drives) == 0 {
		fmt.Fprintln(p.out, picoclip.NoDrive())
		return
	}
	for _, d := range drives {
		fmt.Fprintln(p.out, d)
	}
}

func (p *presenter) SlotContentChanged(content string) {
	if content == "" {
		return
	}
	fmt.Fprint(p.out, content)
	if !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(p.out)
	}
}

func (p *presenter) ErrorOccurred(message string) {
	p.failed++
	fmt.Fprintf(p.errOut, "error: %s\n", message)
}

func (p *presenter) OperationSucceeded(message string) {
	fmt.Fprintln(p.errOut, message)
}

type confirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newConfirmer(in io.Reader, out io.Writer, assumeYes bool) *confirmer {
	return &confirmer{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

// Confirm asks on the terminal. Anything but y or yes, including end of
// input, is a no.
func (c *confirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	if c.assumeYes {
		fmt.Fprintln(c.out, "y")
		return true
	}

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
