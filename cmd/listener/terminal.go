package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// terminal draws the views on a raw-mode terminal. Line input for prompts
// switches back to cooked mode for the time of the question.
type terminal struct {
	mu  sync.Mutex
	out io.Writer
	in  *bufio.Reader
	fd  int
	raw *term.State

	render   func()
	reload   func()
	navigate func(path string)

	background string
	notice     string
}

func newTerminal() *terminal {
	return &terminal{
		out: os.Stdout,
		in:  bufio.NewReader(os.Stdin),
		fd:  int(os.Stdin.Fd()),
	}
}

func (t *terminal) makeRaw() error {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.raw = state
	return nil
}

func (t *terminal) restore() error {
	if t.raw == nil {
		return nil
	}
	err := term.Restore(t.fd, t.raw)
	t.raw = nil
	return err
}

func (t *terminal) readKey() (byte, error) {
	return t.in.ReadByte()
}

func (t *terminal) println(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format+"\r\n", args...)
}

func (t *terminal) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, "\033[H\033[2J")
}

func (t *terminal) ShowMessage(msg string) {
	t.println("  %s", msg)
}

// Alert prints msg and keeps it on screen across redraws until the next key.
func (t *terminal) Alert(msg string) {
	t.mu.Lock()
	t.notice = msg
	t.mu.Unlock()
	t.println("! %s", msg)
}

func (t *terminal) Notice() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notice
}

func (t *terminal) clearNotice() {
	t.mu.Lock()
	t.notice = ""
	t.mu.Unlock()
}

func (t *terminal) Confirm(question string) bool {
	answer, ok := t.Prompt(question + " [y/N]")
	return ok && strings.EqualFold(answer, "y")
}

func (t *terminal) Prompt(question string) (string, bool) {
	wasRaw := t.raw != nil
	if wasRaw {
		t.restore()
		defer t.makeRaw()
	}

	t.mu.Lock()
	fmt.Fprintf(t.out, "%s ", question)
	t.mu.Unlock()

	line, err := t.in.ReadString('\n')
	if err != nil {
		return "", false
	}
	line = strings.TrimSpace(line)
	return line, line != ""
}

func (t *terminal) Navigate(path string) {
	if t.navigate != nil {
		t.navigate(path)
	}
}

func (t *terminal) Reload() {
	if t.reload != nil {
		t.reload()
	}
}

func (t *terminal) Render() {
	if t.render != nil {
		t.render()
	}
}

func (t *terminal) SetBackground(coverURL string) {
	t.mu.Lock()
	t.background = coverURL
	t.mu.Unlock()
	t.println("  cover: %s", coverURL)
}

func (t *terminal) ClearBackground() {
	t.mu.Lock()
	t.background = ""
	t.mu.Unlock()
}

func (t *terminal) Background() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.background
}
