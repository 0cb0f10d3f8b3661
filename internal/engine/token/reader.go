package token

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"dydcheck/internal/core/errors"
)

// DecodeOptions bounds a decode run.
type DecodeOptions struct {
	// MaxTokens caps the stream length; zero means unlimited.
	MaxTokens int
}

// Decode reads `<lexeme> <kind>` records, one per line. Blank lines are
// skipped. Any record that cannot be decoded aborts the load with a
// MALFORMED_INPUT error naming the 1-based input line.
func Decode(r io.Reader, opts DecodeOptions) ([]Token, error) {
	scanner := bufio.NewScanner(r)
	tokens := make([]Token, 0, 256)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tok, err := decodeRecord(line)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxLine, lineNo)
		}
		if opts.MaxTokens > 0 && len(tokens) >= opts.MaxTokens {
			return nil, errors.AddContext(
				errors.Newf(errors.CodeMalformedInput, "too many tokens (limit %d)", opts.MaxTokens),
				errors.CtxLine, lineNo)
		}
		tokens = append(tokens, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedInput, "read token stream")
	}
	return tokens, nil
}

func decodeRecord(line string) (Token, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Token{}, errors.Newf(errors.CodeMalformedInput, "invalid record %q: want \"<lexeme> <kind>\"", line)
	}

	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return Token{}, errors.Wrap(err, errors.CodeMalformedInput, "invalid token kind "+strconv.Quote(fields[1]))
	}
	kind := Kind(code)
	if !kind.Valid() {
		return Token{}, errors.Newf(errors.CodeMalformedInput, "unknown token kind %d", code)
	}

	tok := Token{Kind: kind, Lexeme: fields[0]}
	if len(tok.Lexeme) > MaxLexemeLen {
		tok.Lexeme = tok.Lexeme[:MaxLexemeLen]
		tok.Truncated = true
	}
	return tok, nil
}
