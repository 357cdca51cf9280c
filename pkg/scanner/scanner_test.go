package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golox/pkg/scanner"
)

func tokenTypes(source string) []scanner.TokenType {
	s := scanner.New(source)
	var types []scanner.TokenType
	for {
		tok := s.NextToken()
		types = append(types, tok.Type)
		if tok.Type == scanner.TokenEOF {
			return types
		}
	}
}

func TestScannerPunctuationAndOperators(t *testing.T) {
	got := tokenTypes(`(){};,+-*!=<>=`)
	want := []scanner.TokenType{
		scanner.TokenLeftParen, scanner.TokenRightParen,
		scanner.TokenLeftBrace, scanner.TokenRightBrace,
		scanner.TokenSemicolon, scanner.TokenComma,
		scanner.TokenPlus, scanner.TokenMinus, scanner.TokenStar,
		scanner.TokenBangEqual, scanner.TokenLess, scanner.TokenGreaterEqual,
		scanner.TokenEOF,
	}
	assert.Equal(t, want, got)
}

func TestScannerKeywordsVsIdentifiers(t *testing.T) {
	got := tokenTypes(`and class orchid forest`)
	want := []scanner.TokenType{
		scanner.TokenAnd, scanner.TokenClass,
		// "orchid" and "forest" share a prefix with "or" and "for" but are
		// full identifiers, not keywords.
		scanner.TokenIdentifier, scanner.TokenIdentifier,
		scanner.TokenEOF,
	}
	assert.Equal(t, want, got)
}

func TestScannerStringLiteral(t *testing.T) {
	s := scanner.New(`"hello world"`)
	tok := s.NextToken()
	assert.Equal(t, scanner.TokenString, tok.Type)
	assert.Equal(t, `"hello world"`, tok.Lexeme)
}

func TestScannerUnterminatedStringIsErrorToken(t *testing.T) {
	s := scanner.New(`"hello`)
	tok := s.NextToken()
	assert.Equal(t, scanner.TokenError, tok.Type)
}

func TestScannerNumberLiteral(t *testing.T) {
	s := scanner.New(`123.45`)
	tok := s.NextToken()
	assert.Equal(t, scanner.TokenNumber, tok.Type)
	assert.Equal(t, "123.45", tok.Lexeme)
}

func TestScannerTracksLineNumbers(t *testing.T) {
	s := scanner.New("var a = 1;\nvar b = 2;")
	var lines []int
	for {
		tok := s.NextToken()
		if tok.Type == scanner.TokenEOF {
			break
		}
		lines = append(lines, tok.Line)
	}
	assert.Equal(t, 1, lines[0])
	assert.Equal(t, 2, lines[len(lines)-1])
}

func TestScannerSkipsLineComments(t *testing.T) {
	got := tokenTypes("// a comment\nvar")
	want := []scanner.TokenType{scanner.TokenVar, scanner.TokenEOF}
	assert.Equal(t, want, got)
}
