package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/xirelogy/go-lox/internal/lexer"
	"github.com/xirelogy/go-lox/internal/strlist"
	"github.com/xirelogy/go-lox/internal/token"
)

// repl reads lines until EOF or :quit. A terminal gets line editing and
// highlighting; anything else is read line by line.
func (s *session) repl(stdin io.Reader) int {
	history := strlist.New()
	defer history.Free()

	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if err := s.readlineLoop(history); err != nil {
			fmt.Fprintln(s.stderr, err)
			return exitIOErr
		}
		return exitOK
	}

	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if !s.handleLine(sc.Text(), history) {
			return exitOK
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintln(s.stderr, err)
		return exitIOErr
	}
	return exitOK
}

func (s *session) readlineLoop(history *strlist.List) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.cfg.REPL.Prompt,
		HistoryFile:     s.cfg.REPL.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
		Painter:         newHighlighter(),
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !s.handleLine(line, history) {
			return nil
		}
	}
}

// handleLine runs one REPL line and reports whether the loop should go on.
func (s *session) handleLine(line string, history *strlist.List) bool {
	switch strings.TrimSpace(line) {
	case "":
		return true
	case ":quit":
		return false
	case ":history":
		for i, entry := range history.All() {
			fmt.Fprintf(s.stdout, "%4d  %s\n", i+1, entry)
		}
		return true
	}

	history.Append(line)
	for _, piece := range splitPieces(line, s.cfg.REPL.MaxLine) {
		s.interpret(piece)
	}
	return true
}

// splitPieces cuts line into pieces of at most limit bytes.
func splitPieces(line string, limit int) []string {
	if limit <= 0 || len(line) <= limit {
		return []string{line}
	}
	var pieces []string
	for len(line) > limit {
		pieces = append(pieces, line[:limit])
		line = line[limit:]
	}
	if line != "" {
		pieces = append(pieces, line)
	}
	return pieces
}

// highlighter paints the input line token by token. Text the lexer skips
// or rejects is copied through unchanged.
type highlighter struct {
	number  func(a ...interface{}) string
	keyword func(a ...interface{}) string
	str     func(a ...interface{}) string
	ident   func(a ...interface{}) string
}

func newHighlighter() *highlighter {
	return &highlighter{
		number:  color.New(color.FgMagenta).SprintFunc(),
		keyword: color.New(color.FgBlue, color.Bold).SprintFunc(),
		str:     color.New(color.FgGreen).SprintFunc(),
		ident:   fmt.Sprint,
	}
}

func (h *highlighter) Paint(line []rune, _ int) []rune {
	return []rune(h.highlight(string(line)))
}

func (h *highlighter) highlight(src string) string {
	var b strings.Builder
	pos := 0
	for _, tok := range lexer.Tokenize(src) {
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.Error {
			continue
		}
		if tok.Offset > pos {
			b.WriteString(src[pos:tok.Offset])
		}
		b.WriteString(h.paint(tok))
		pos = tok.Offset + len(tok.Lexeme)
	}
	b.WriteString(src[pos:])
	return b.String()
}

func (h *highlighter) paint(tok token.Token) string {
	switch {
	case tok.Type == token.Number:
		return h.number(tok.Lexeme)
	case tok.Type == token.String:
		return h.str(tok.Lexeme)
	case token.IsKeyword(tok.Type):
		return h.keyword(tok.Lexeme)
	case tok.Type == token.Ident:
		return h.ident(tok.Lexeme)
	default:
		return tok.Lexeme
	}
}
