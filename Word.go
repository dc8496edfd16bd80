package main

import (
	"strings"
)

type WordPartType int

const (
	PARTLITERAL WordPartType = iota
	PARTVARIABLE
	PARTASSIGN
)

func (t WordPartType) String() string {
	switch t {
	case PARTLITERAL:
		return "PARTLITERAL"
	case PARTVARIABLE:
		return "PARTVARIABLE"
	case PARTASSIGN:
		return "PARTASSIGN"
	}
	return "UNKNOWN"
}

// WordPart is one piece of a possibly-composite word: either literal text
// or the name of a variable to substitute at resolution time.
type WordPart struct {
	Text string
	Type WordPartType
}

// Word is a sequence of parts lexed from a single shell word, e.g.
// `pre$HOME/post` has three parts. A bare `=` part marks an assignment
// word so that quoted equal signs are not mistaken for assignments.
type Word struct {
	Parts []WordPart
}

func (w *Word) addLiteral(s string) {
	if len(w.Parts) > 0 {
		end := len(w.Parts) - 1
		if w.Parts[end].Type == PARTLITERAL {
			w.Parts[end].Text += s
			return
		}
	}
	w.Parts = append(w.Parts, WordPart{Text: s, Type: PARTLITERAL})
}

func (w *Word) addVariable(name string) {
	w.Parts = append(w.Parts, WordPart{Text: name, Type: PARTVARIABLE})
}

// addAssign appends an unquoted `=` as its own part. Keeping it distinct
// from literal text is what lets a quoted equal sign escape assignment
// detection.
func (w *Word) addAssign() {
	w.Parts = append(w.Parts, WordPart{Text: "=", Type: PARTASSIGN})
}

func (w *Word) Empty() bool {
	return w == nil || len(w.Parts) == 0
}

// Resolve produces the final string value of the word, substituting each
// variable part through getenv. A fresh string is allocated per call; the
// tree itself is never mutated.
func (w *Word) Resolve(getenv func(string) string) string {
	var sb strings.Builder
	for _, p := range w.Parts {
		switch p.Type {
		case PARTVARIABLE:
			sb.WriteString(getenv(p.Text))
		default:
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// DebugString renders the unresolved word, variable parts prefixed with $.
func (w *Word) DebugString() string {
	var sb strings.Builder
	for _, p := range w.Parts {
		if p.Type == PARTVARIABLE {
			sb.WriteString("$")
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// IsAssignment reports whether the word has the NAME=value shape: a
// leading literal name part followed immediately by an unquoted `=`.
// On success it returns the name and the parts making up the value.
func (w *Word) IsAssignment() (string, []WordPart, bool) {
	if len(w.Parts) < 2 {
		return "", nil, false
	}
	if w.Parts[0].Type != PARTLITERAL || w.Parts[1].Type != PARTASSIGN {
		return "", nil, false
	}
	name := w.Parts[0].Text
	if name == "" {
		return "", nil, false
	}
	return name, w.Parts[2:], true
}
