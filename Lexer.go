package main

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType int

const (
	TOKENEOF TokenType = iota
	WORD
	SEMICOLON
	AMPERSAND
	ANDAND
	OROR
	PIPETOKEN
	GREAT
	DGREAT
	LESS
	ERRGREAT
	ERRDGREAT
	BOTHGREAT
)

func (t TokenType) String() string {
	switch t {
	case TOKENEOF:
		return "TOKENEOF"
	case WORD:
		return "WORD"
	case SEMICOLON:
		return "SEMICOLON"
	case AMPERSAND:
		return "AMPERSAND"
	case ANDAND:
		return "ANDAND"
	case OROR:
		return "OROR"
	case PIPETOKEN:
		return "PIPETOKEN"
	case GREAT:
		return "GREAT"
	case DGREAT:
		return "DGREAT"
	case LESS:
		return "LESS"
	case ERRGREAT:
		return "ERRGREAT"
	case ERRDGREAT:
		return "ERRDGREAT"
	case BOTHGREAT:
		return "BOTHGREAT"
	}
	return "UNKNOWN"
}

type Token struct {
	Type   TokenType
	Lexeme string
	Word   Word
}

var (
	ErrMissingEndQuote = errors.New("unexpected EOF while looking for matching quote")
	ErrBadSubstitution = errors.New("bad substitution")
)

type Lexer struct {
	input  string
	tokens []Token
	word   Word
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

func (l *Lexer) flushWord() {
	if len(l.word.Parts) == 0 {
		return
	}
	l.tokens = append(l.tokens, Token{Type: WORD, Lexeme: l.word.DebugString(), Word: l.word})
	l.word = Word{}
}

func (l *Lexer) emit(t TokenType, lexeme string) {
	l.flushWord()
	l.tokens = append(l.tokens, Token{Type: t, Lexeme: lexeme})
}

func (l *Lexer) next() (rune, bool) {
	if len(l.input) == 0 {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(l.input)
	l.input = l.input[size:]
	return r, true
}

func (l *Lexer) peekByte() (byte, bool) {
	if len(l.input) == 0 {
		return 0, false
	}
	return l.input[0], true
}

// wordIsFdDigit reports whether the word accumulated so far is exactly the
// literal "2", i.e. the next '>' forms a stderr redirection token.
func (l *Lexer) wordIsFdDigit() bool {
	return len(l.word.Parts) == 1 &&
		l.word.Parts[0].Type == PARTLITERAL &&
		l.word.Parts[0].Text == "2"
}

// Tokenize splits one line of input into words and operator tokens.
// The returned slice always ends with a TOKENEOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		r, ok := l.next()
		if !ok {
			break
		}

		if unicode.IsSpace(r) {
			l.flushWord()
			continue
		}

		switch r {
		case '#':
			if len(l.word.Parts) == 0 {
				// comment runs to end of line
				l.input = ""
				continue
			}
			l.word.addLiteral("#")
		case ';':
			l.emit(SEMICOLON, ";")
		case '&':
			if b, ok := l.peekByte(); ok && b == '&' {
				l.input = l.input[1:]
				l.emit(ANDAND, "&&")
			} else if ok && b == '>' {
				l.input = l.input[1:]
				l.emit(BOTHGREAT, "&>")
			} else {
				l.emit(AMPERSAND, "&")
			}
		case '|':
			if b, ok := l.peekByte(); ok && b == '|' {
				l.input = l.input[1:]
				l.emit(OROR, "||")
			} else {
				l.emit(PIPETOKEN, "|")
			}
		case '>':
			isErr := l.wordIsFdDigit()
			if isErr {
				// consume the "2" into the operator
				l.word = Word{}
			}
			double := false
			if b, ok := l.peekByte(); ok && b == '>' {
				l.input = l.input[1:]
				double = true
			}
			switch {
			case isErr && double:
				l.emit(ERRDGREAT, "2>>")
			case isErr:
				l.emit(ERRGREAT, "2>")
			case double:
				l.emit(DGREAT, ">>")
			default:
				l.emit(GREAT, ">")
			}
		case '<':
			l.emit(LESS, "<")
		case '=':
			l.word.addAssign()
		case '$':
			if err := l.lexVariable(); err != nil {
				return nil, err
			}
		case '\'':
			if err := l.lexSingleQuote(); err != nil {
				return nil, err
			}
		case '"':
			if err := l.lexDoubleQuote(); err != nil {
				return nil, err
			}
		case '\\':
			if e, ok := l.next(); ok {
				l.word.addLiteral(string(e))
			} else {
				l.word.addLiteral("\\")
			}
		default:
			l.word.addLiteral(string(r))
		}
	}
	l.flushWord()
	l.tokens = append(l.tokens, Token{Type: TOKENEOF})
	return l.tokens, nil
}

// lexVariable consumes a $NAME or ${NAME} reference into a variable part.
// A lone dollar that introduces no name stays literal text.
func (l *Lexer) lexVariable() error {
	b, ok := l.peekByte()
	if !ok {
		l.word.addLiteral("$")
		return nil
	}
	if b == '{' {
		l.input = l.input[1:]
		end := strings.IndexByte(l.input, '}')
		if end < 0 {
			return ErrBadSubstitution
		}
		name := l.input[:end]
		l.input = l.input[end+1:]
		if name == "" || !validVarName(name) {
			return ErrBadSubstitution
		}
		l.word.addVariable(name)
		return nil
	}
	i := 0
	for i < len(l.input) && isVarRune(rune(l.input[i]), i == 0) {
		i++
	}
	if i == 0 {
		l.word.addLiteral("$")
		return nil
	}
	l.word.addVariable(l.input[:i])
	l.input = l.input[i:]
	return nil
}

func (l *Lexer) lexSingleQuote() error {
	for {
		r, ok := l.next()
		if !ok {
			return ErrMissingEndQuote
		}
		if r == '\'' {
			if len(l.word.Parts) == 0 {
				// preserve the empty quoted word
				l.word.Parts = append(l.word.Parts, WordPart{Type: PARTLITERAL})
			}
			return nil
		}
		l.word.addLiteral(string(r))
	}
}

func (l *Lexer) lexDoubleQuote() error {
	quoted := false
	for {
		r, ok := l.next()
		if !ok {
			return ErrMissingEndQuote
		}
		switch r {
		case '"':
			if !quoted && len(l.word.Parts) == 0 {
				l.word.Parts = append(l.word.Parts, WordPart{Type: PARTLITERAL})
			}
			return nil
		case '$':
			if err := l.lexVariable(); err != nil {
				return err
			}
			quoted = true
		case '\\':
			if b, ok := l.peekByte(); ok && (b == '$' || b == '"' || b == '\\') {
				l.input = l.input[1:]
				l.word.addLiteral(string(b))
			} else {
				l.word.addLiteral("\\")
			}
			quoted = true
		default:
			l.word.addLiteral(string(r))
			quoted = true
		}
	}
}

func isVarRune(r rune, first bool) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}

func validVarName(name string) bool {
	for i, r := range name {
		if !isVarRune(r, i == 0) {
			return false
		}
	}
	return true
}
