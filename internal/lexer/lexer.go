// Package lexer provides tokenization for Cb source code.
//
// The lexer converts a Cb source string into a sequence of tokens,
// handling keywords, identifiers, numeric literals (decimal, with
// optional u/l type suffixes), string literals with escapes, operators,
// punctuation, and line/block comments. Positions are byte offsets into
// the source, matching ast.Pos.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TokenKind identifies the lexical category of a Token.
type TokenKind uint8

const (
	TokError TokenKind = iota
	TokEOF

	TokIntLiteral
	TokFloatLiteral
	TokStringLiteral
	TokIdent

	// Type keywords
	TokTiny
	TokShort
	TokInt
	TokLong
	TokBool
	TokChar
	TokString
	TokFloat
	TokDouble
	TokQuad
	TokVoid
	TokUnsigned

	// Declaration keywords
	TokConst
	TokStatic
	TokTypedef
	TokStruct
	TokUnion
	TokEnum
	TokInterface
	TokImpl
	TokPrivate
	TokPublic
	TokSelf

	// Control-flow keywords
	TokIf
	TokElse
	TokWhile
	TokFor
	TokBreak
	TokContinue
	TokReturn
	TokAssert
	TokTrue
	TokFalse
	TokNull

	// Output keywords
	TokPrint
	TokPrintln
	TokPrintf
	TokPrintlnf

	// Operators
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokAmp
	TokPipe
	TokCaret
	TokTilde
	TokBang
	TokLt
	TokGt
	TokEq
	TokDot
	TokQuestion
	TokColonColon // ::

	TokPlusPlus
	TokMinusMinus
	TokAmpAmp
	TokPipePipe
	TokLtLt
	TokGtGt
	TokLtEq
	TokGtEq
	TokEqEq
	TokBangEq
	TokArrow // ->
	TokPlusEq
	TokMinusEq
	TokStarEq
	TokSlashEq
	TokPercentEq

	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokSemicolon
	TokColon
	TokComma
	TokAmpersandRef // trailing '&' used as a reference type marker
)

var tokenNames = map[TokenKind]string{
	TokError: "error", TokEOF: "EOF",
	TokIntLiteral: "int-literal", TokFloatLiteral: "float-literal", TokStringLiteral: "string-literal",
	TokIdent: "identifier",
	TokTiny: "tiny", TokShort: "short", TokInt: "int", TokLong: "long", TokBool: "bool",
	TokChar: "char", TokString: "string", TokFloat: "float", TokDouble: "double", TokQuad: "quad",
	TokVoid: "void", TokUnsigned: "unsigned",
	TokConst: "const", TokStatic: "static", TokTypedef: "typedef", TokStruct: "struct",
	TokUnion: "union", TokEnum: "enum", TokInterface: "interface", TokImpl: "impl",
	TokPrivate: "private", TokPublic: "public", TokSelf: "self",
	TokIf: "if", TokElse: "else", TokWhile: "while", TokFor: "for", TokBreak: "break",
	TokContinue: "continue", TokReturn: "return", TokAssert: "assert",
	TokTrue: "true", TokFalse: "false", TokNull: "null",
	TokPrint: "print", TokPrintln: "println", TokPrintf: "printf", TokPrintlnf: "printlnf",
	TokPlus: "+", TokMinus: "-", TokStar: "*", TokSlash: "/", TokPercent: "%",
	TokAmp: "&", TokPipe: "|", TokCaret: "^", TokTilde: "~", TokBang: "!",
	TokLt: "<", TokGt: ">", TokEq: "=", TokDot: ".", TokQuestion: "?", TokColonColon: "::",
	TokPlusPlus: "++", TokMinusMinus: "--", TokAmpAmp: "&&", TokPipePipe: "||",
	TokLtLt: "<<", TokGtGt: ">>", TokLtEq: "<=", TokGtEq: ">=", TokEqEq: "==", TokBangEq: "!=",
	TokArrow: "->", TokPlusEq: "+=", TokMinusEq: "-=", TokStarEq: "*=", TokSlashEq: "/=", TokPercentEq: "%=",
	TokLParen: "(", TokRParen: ")", TokLBrace: "{", TokRBrace: "}",
	TokLBracket: "[", TokRBracket: "]", TokSemicolon: ";", TokColon: ":", TokComma: ",",
	TokAmpersandRef: "&",
}

func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("tok(%d)", uint8(k))
}

var keywords = map[string]TokenKind{
	"tiny": TokTiny, "short": TokShort, "int": TokInt, "long": TokLong,
	"bool": TokBool, "char": TokChar, "string": TokString, "float": TokFloat,
	"double": TokDouble, "quad": TokQuad, "void": TokVoid, "unsigned": TokUnsigned,
	"const": TokConst, "static": TokStatic, "typedef": TokTypedef, "struct": TokStruct,
	"union": TokUnion, "enum": TokEnum, "interface": TokInterface, "impl": TokImpl,
	"private": TokPrivate, "public": TokPublic, "self": TokSelf,
	"if": TokIf, "else": TokElse, "while": TokWhile, "for": TokFor,
	"break": TokBreak, "continue": TokContinue, "return": TokReturn, "assert": TokAssert,
	"true": TokTrue, "false": TokFalse, "null": TokNull,
	"print": TokPrint, "println": TokPrintln, "printf": TokPrintf, "printlnf": TokPrintlnf,
}

// Token is a single lexical token.
type Token struct {
	Kind  TokenKind
	Start int32
	End   int32
	// IntValue/FloatValue/StringValue/Suffix carry decoded literal
	// payloads so the parser never re-scans source text.
	IntValue    int64
	FloatValue  float64
	StringValue string
	Suffix      string
}

// Text returns the raw source slice for the token.
func (t Token) Text(source string) string {
	if int(t.End) > len(source) || t.Start < 0 {
		return ""
	}
	return source[t.Start:t.End]
}

// Lexer tokenizes Cb source incrementally.
type Lexer struct {
	source string
	pos    int
	errs   []error
}

// New creates a Lexer over source.
func New(source string) *Lexer {
	return &Lexer{source: source}
}

// Errors returns any lexical errors accumulated so far.
func (l *Lexer) Errors() []error { return l.errs }

// Tokenize scans the entire source and returns all tokens, including a
// trailing TokEOF.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	return toks
}

// Next scans and returns the next token.
func (l *Lexer) Next() Token {
	l.skipWhitespaceAndComments()
	if l.pos >= len(l.source) {
		return Token{Kind: TokEOF, Start: int32(l.pos), End: int32(l.pos)}
	}

	c := l.source[l.pos]

	switch {
	case isASCIIIdentStart(c):
		return l.scanIdentOrKeyword()
	case isDigit(c):
		return l.scanNumber()
	case c == '"':
		return l.scanString()
	default:
		return l.scanOperator()
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.source) {
		c := l.source[l.pos]
		if isWhitespace(c) {
			l.pos++
			continue
		}
		if c == '/' && l.pos+1 < len(l.source) {
			if l.source[l.pos+1] == '/' {
				for l.pos < len(l.source) && l.source[l.pos] != '\n' {
					l.pos++
				}
				continue
			}
			if l.source[l.pos+1] == '*' {
				l.pos += 2
				for l.pos < len(l.source) {
					if l.source[l.pos] == '*' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '/' {
						l.pos += 2
						break
					}
					l.pos++
				}
				continue
			}
		}
		break
	}
}

func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos
	l.pos++
	for l.pos < len(l.source) && isIdentContinueByte(l.source[l.pos]) {
		l.pos++
	}
	text := l.source[start:l.pos]
	if kind, ok := keywords[text]; ok {
		return Token{Kind: kind, Start: int32(start), End: int32(l.pos)}
	}
	return Token{Kind: TokIdent, Start: int32(start), End: int32(l.pos), StringValue: text}
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
		l.pos++
	}
	isFloat := false
	if l.pos < len(l.source) && l.source[l.pos] == '.' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1]) {
		isFloat = true
		l.pos++
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.pos++
		}
	}
	digits := l.source[start:l.pos]

	suffixStart := l.pos
	for l.pos < len(l.source) && (l.source[l.pos] == 'u' || l.source[l.pos] == 'U' ||
		l.source[l.pos] == 'l' || l.source[l.pos] == 'L' || l.source[l.pos] == 'f' || l.source[l.pos] == 'F') {
		l.pos++
	}
	suffix := strings.ToLower(l.source[suffixStart:l.pos])

	tok := Token{Start: int32(start), End: int32(l.pos), Suffix: suffix}
	if isFloat || strings.Contains(suffix, "f") {
		tok.Kind = TokFloatLiteral
		var f float64
		fmt.Sscanf(digits, "%g", &f)
		tok.FloatValue = f
		return tok
	}
	tok.Kind = TokIntLiteral
	var n int64
	fmt.Sscanf(digits, "%d", &n)
	tok.IntValue = n
	return tok
}

func (l *Lexer) scanString() Token {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.source) && l.source[l.pos] != '"' {
		c := l.source[l.pos]
		if c == '\\' && l.pos+1 < len(l.source) {
			switch l.source[l.pos+1] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte(l.source[l.pos+1])
			}
			l.pos += 2
			continue
		}
		r, size := utf8.DecodeRuneInString(l.source[l.pos:])
		sb.WriteRune(r)
		l.pos += size
	}
	if l.pos < len(l.source) {
		l.pos++ // closing quote
	} else {
		l.errs = append(l.errs, fmt.Errorf("unterminated string literal at offset %d", start))
	}
	// Normalize to NFC so code-point indexing (§3.2) sees one index per
	// user-perceived character even when the source mixes precomposed
	// and decomposed accent forms.
	normalized := norm.NFC.String(sb.String())
	return Token{Kind: TokStringLiteral, Start: int32(start), End: int32(l.pos), StringValue: normalized}
}

func (l *Lexer) scanOperator() Token {
	start := l.pos
	two := ""
	if l.pos+1 < len(l.source) {
		two = l.source[l.pos : l.pos+2]
	}

	mk := func(kind TokenKind, width int) Token {
		l.pos += width
		return Token{Kind: kind, Start: int32(start), End: int32(l.pos)}
	}

	switch two {
	case "++":
		return mk(TokPlusPlus, 2)
	case "--":
		return mk(TokMinusMinus, 2)
	case "&&":
		return mk(TokAmpAmp, 2)
	case "||":
		return mk(TokPipePipe, 2)
	case "<<":
		return mk(TokLtLt, 2)
	case ">>":
		return mk(TokGtGt, 2)
	case "<=":
		return mk(TokLtEq, 2)
	case ">=":
		return mk(TokGtEq, 2)
	case "==":
		return mk(TokEqEq, 2)
	case "!=":
		return mk(TokBangEq, 2)
	case "->":
		return mk(TokArrow, 2)
	case "+=":
		return mk(TokPlusEq, 2)
	case "-=":
		return mk(TokMinusEq, 2)
	case "*=":
		return mk(TokStarEq, 2)
	case "/=":
		return mk(TokSlashEq, 2)
	case "%=":
		return mk(TokPercentEq, 2)
	case "::":
		return mk(TokColonColon, 2)
	}

	c := l.source[l.pos]
	switch c {
	case '+':
		return mk(TokPlus, 1)
	case '-':
		return mk(TokMinus, 1)
	case '*':
		return mk(TokStar, 1)
	case '/':
		return mk(TokSlash, 1)
	case '%':
		return mk(TokPercent, 1)
	case '&':
		return mk(TokAmp, 1)
	case '|':
		return mk(TokPipe, 1)
	case '^':
		return mk(TokCaret, 1)
	case '~':
		return mk(TokTilde, 1)
	case '!':
		return mk(TokBang, 1)
	case '<':
		return mk(TokLt, 1)
	case '>':
		return mk(TokGt, 1)
	case '=':
		return mk(TokEq, 1)
	case '.':
		return mk(TokDot, 1)
	case '?':
		return mk(TokQuestion, 1)
	case '(':
		return mk(TokLParen, 1)
	case ')':
		return mk(TokRParen, 1)
	case '{':
		return mk(TokLBrace, 1)
	case '}':
		return mk(TokRBrace, 1)
	case '[':
		return mk(TokLBracket, 1)
	case ']':
		return mk(TokRBracket, 1)
	case ';':
		return mk(TokSemicolon, 1)
	case ':':
		return mk(TokColon, 1)
	case ',':
		return mk(TokComma, 1)
	default:
		l.errs = append(l.errs, fmt.Errorf("unexpected character %q at offset %d", c, start))
		return mk(TokError, 1)
	}
}

func isWhitespace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }

func isASCIIIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentContinueByte(c byte) bool {
	return isASCIIIdentStart(c) || isDigit(c)
}

// IsIdentRune reports whether r may appear in an identifier per
// Unicode's XID_Continue-ish relaxation used for non-ASCII source
// (the lexer only fast-paths ASCII identifiers; this is exposed for
// tooling built on top of the lexer).
func IsIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
