package tag

import "strings"

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIllegal
	tokenWord
	tokenString
	tokenQuotedIdent
	tokenEq
	tokenLBrace
	tokenRBrace
	tokenLBracket
	tokenRBracket
	tokenComma
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of line"
	case tokenIllegal:
		return "illegal character"
	case tokenWord:
		return "word"
	case tokenString:
		return "string"
	case tokenQuotedIdent:
		return "quoted identifier"
	case tokenEq:
		return "'='"
	case tokenLBrace:
		return "'{'"
	case tokenRBrace:
		return "'}'"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	case tokenComma:
		return "','"
	}
	return "unknown"
}

type token struct {
	typ     tokenType
	literal string
	offset  int
	end     int // offset just past the token
}

// lexer tokenizes a single annotation line.
type lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *lexer) next() token {
	tok := l.scan()
	tok.end = l.pos
	return tok
}

func (l *lexer) scan() token {
	l.skipWhitespace()
	start := l.pos

	switch l.ch {
	case 0:
		return token{typ: tokenEOF, offset: start}
	case '=':
		l.readChar()
		return token{typ: tokenEq, literal: "=", offset: start}
	case '{':
		l.readChar()
		return token{typ: tokenLBrace, literal: "{", offset: start}
	case '}':
		l.readChar()
		return token{typ: tokenRBrace, literal: "}", offset: start}
	case '[':
		l.readChar()
		return token{typ: tokenLBracket, literal: "[", offset: start}
	case ']':
		l.readChar()
		return token{typ: tokenRBracket, literal: "]", offset: start}
	case ',':
		l.readChar()
		return token{typ: tokenComma, literal: ",", offset: start}
	case '"', '\'':
		s, ok := l.readQuoted(l.ch)
		if !ok {
			return token{typ: tokenIllegal, literal: "unterminated string", offset: start}
		}
		return token{typ: tokenString, literal: s, offset: start}
	case '`':
		s, ok := l.readQuoted('`')
		if !ok {
			return token{typ: tokenIllegal, literal: "unterminated identifier", offset: start}
		}
		return token{typ: tokenQuotedIdent, literal: s, offset: start}
	}

	if isWordChar(l.ch) {
		for isWordChar(l.ch) {
			l.readChar()
		}
		return token{typ: tokenWord, literal: l.input[start:l.pos], offset: start}
	}

	ch := l.ch
	l.readChar()
	return token{typ: tokenIllegal, literal: string(ch), offset: start}
}

// readQuoted reads a quoted run starting at the opening quote.
// Backslash escapes the next character.
func (l *lexer) readQuoted(quote byte) (string, bool) {
	var sb strings.Builder
	l.readChar() // opening quote
	for {
		switch l.ch {
		case 0:
			return sb.String(), false
		case quote:
			l.readChar()
			return sb.String(), true
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return sb.String(), false
			}
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(l.ch)
			}
		default:
			sb.WriteByte(l.ch)
		}
		l.readChar()
	}
}

func isWordChar(ch byte) bool {
	switch ch {
	case 0, ' ', '\t', '\n', '\r', '=', '{', '}', '[', ']', ',', '"', '\'', '`':
		return false
	}
	return true
}
