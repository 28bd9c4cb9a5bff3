package parser

import "strings"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIdent
	tokString
	tokNumber
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokComma
	tokColon
	tokDot
	tokQuestion
	tokEquals
	tokAt
	tokAtAt
	tokDocComment
	tokComment
	tokInvalid
)

// token carries byte-accurate start/end offsets into the source so spans
// survive all the way into diagnostics.
type token struct {
	kind  tokenKind
	start int
	end   int
	text  string
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// lex tokenizes the whole source. Comments and doc comments are emitted as
// tokens rather than discarded: the reformatter needs them.
func lex(src string) []token {
	var toks []token
	i := 0
	n := len(src)
	emit := func(kind tokenKind, start, end int) {
		toks = append(toks, token{kind: kind, start: start, end: end, text: src[start:end]})
	}
	for i < n {
		b := src[i]
		switch {
		case b == ' ' || b == '\t' || b == '\r':
			i++
		case b == '\n':
			emit(tokNewline, i, i+1)
			i++
		case b == '/' && strings.HasPrefix(src[i:], "///"):
			start := i
			for i < n && src[i] != '\n' {
				i++
			}
			emit(tokDocComment, start, i)
		case b == '/' && strings.HasPrefix(src[i:], "//"):
			start := i
			for i < n && src[i] != '\n' {
				i++
			}
			emit(tokComment, start, i)
		case b == '"':
			start := i
			i++
			for i < n && src[i] != '"' && src[i] != '\n' {
				if src[i] == '\\' && i+1 < n {
					i++
				}
				i++
			}
			if i < n && src[i] == '"' {
				i++
			}
			emit(tokString, start, i)
		case isIdentStart(b):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			emit(tokIdent, start, i)
		case isDigit(b) || (b == '-' && i+1 < n && isDigit(src[i+1])):
			start := i
			i++
			for i < n && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			emit(tokNumber, start, i)
		case b == '@':
			if i+1 < n && src[i+1] == '@' {
				emit(tokAtAt, i, i+2)
				i += 2
			} else {
				emit(tokAt, i, i+1)
				i++
			}
		default:
			kind := tokInvalid
			switch b {
			case '{':
				kind = tokLBrace
			case '}':
				kind = tokRBrace
			case '[':
				kind = tokLBracket
			case ']':
				kind = tokRBracket
			case '(':
				kind = tokLParen
			case ')':
				kind = tokRParen
			case ',':
				kind = tokComma
			case ':':
				kind = tokColon
			case '.':
				kind = tokDot
			case '?':
				kind = tokQuestion
			case '=':
				kind = tokEquals
			}
			emit(kind, i, i+1)
			i++
		}
	}
	emit(tokEOF, n, n)
	return toks
}

// unquote decodes a double-quoted string literal. The lexer guarantees the
// text starts with a quote; an unterminated literal decodes best-effort.
func unquote(raw string) string {
	if len(raw) < 2 || raw[0] != '"' {
		return raw
	}
	body := raw[1:]
	if body[len(body)-1] == '"' {
		body = body[:len(body)-1]
	}
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '"':
				sb.WriteByte(body[i])
			default:
				sb.WriteByte('\\')
				sb.WriteByte(body[i])
			}
			continue
		}
		sb.WriteByte(body[i])
	}
	return sb.String()
}
