package grammar

import (
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxLineSize is 4KB (conservative default)
	DefaultMaxLineSize = 4096
	// EnvMaxLineSize is the environment variable to override the default
	EnvMaxLineSize = "REPLET_MAX_LINE_SIZE"
)

// Tokenize sanitizes line and splits it on whitespace.
// Quoting and escaping are not interpreted. On failure the error is a *Error.
func (g *Grammar) Tokenize(line string) ([]string, error) {
	clean, err := SanitizeLine(line, g.cfg.maxLineSize)
	if err != nil {
		return nil, err
	}
	return strings.Fields(clean), nil
}

// SanitizeLine enforces the size limit, validates UTF-8 and strips
// control characters other than tab, newline and carriage return.
func SanitizeLine(line string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxLineSize
	}
	if len(line) > limit {
		// Reject rather than truncate so the matched command is exactly what was typed.
		return "", &Error{
			Kind:    KindValueValidation,
			Message: "line exceeds maximum allowed size: size=" + strconv.Itoa(len(line)) + " limit=" + strconv.Itoa(limit),
		}
	}

	if !utf8.ValidString(line) {
		return "", &Error{Kind: KindInvalidUTF8, Message: "line contains invalid UTF-8 sequences"}
	}

	// Fast path: if no control chars, return as is.
	clean := true
	for _, r := range line {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return line, nil
	}

	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxLineSizeFromEnv() int {
	if val := os.Getenv(EnvMaxLineSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxLineSize
}
