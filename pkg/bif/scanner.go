/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scanner.go
Description: Splits BIF text into top-level blocks. A block is a header followed by a
brace-delimited body; nested braces inside the body are kept intact. Comments are
stripped before scanning.
*/

package bif

import (
	"strings"
	"unicode"
)

// block is one top-level declaration such as `variable A { ... }`.
type block struct {
	kind   string // network, variable, probability
	header string // everything before the opening brace, whitespace-collapsed
	body   string
	line   int
}

// stripComments removes // line comments and /* */ block comments outside
// double-quoted strings. Line breaks inside block comments are kept so line
// numbers stay stable.
func stripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		switch {
		case text[i] == '"':
			end := strings.IndexByte(text[i+1:], '"')
			if end < 0 {
				end = len(text) - i - 2
			}
			b.WriteString(text[i : i+2+end])
			i += 1 + end
		case strings.HasPrefix(text[i:], "//"):
			for i < len(text) && text[i] != '\n' {
				i++
			}
			if i < len(text) {
				b.WriteByte('\n')
			}
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				end = len(text) - i - 2
			}
			b.WriteString(strings.Repeat("\n", strings.Count(text[i:i+2+end], "\n")))
			i += 2 + end + 1
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}

// scanBlocks returns the top-level blocks in declaration order.
func scanBlocks(text string) ([]block, error) {
	text = stripComments(text)
	var blocks []block
	line := 1
	i := 0
	for i < len(text) {
		// skip separators between blocks
		for i < len(text) && (unicode.IsSpace(rune(text[i])) || text[i] == ';') {
			if text[i] == '\n' {
				line++
			}
			i++
		}
		if i >= len(text) {
			break
		}

		start, startLine := i, line
		open := strings.IndexByte(text[i:], '{')
		if open < 0 {
			return nil, parseErrorf(firstWords(text[i:]), startLine, "declaration without a body")
		}
		header := strings.Join(strings.Fields(text[i:i+open]), " ")
		line += strings.Count(text[i:i+open], "\n")
		i += open + 1

		depth := 1
		bodyStart := i
		for i < len(text) && depth > 0 {
			switch text[i] {
			case '{':
				depth++
			case '}':
				depth--
			case '\n':
				line++
			}
			i++
		}
		if depth > 0 {
			return nil, parseErrorf(header, startLine, "unbalanced braces")
		}

		kind := header
		if sp := strings.IndexFunc(header, func(r rune) bool { return unicode.IsSpace(r) || r == '(' }); sp >= 0 {
			kind = header[:sp]
		}
		if kind == "" {
			return nil, parseErrorf(text[start:bodyStart], startLine, "block without a header")
		}
		blocks = append(blocks, block{
			kind:   kind,
			header: header,
			body:   text[bodyStart : i-1],
			line:   startLine,
		})
	}
	return blocks, nil
}

// statements splits a block body on semicolons, dropping empty statements.
func statements(body string) []string {
	var out []string
	for _, s := range strings.Split(body, ";") {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstWords(s string) string {
	f := strings.Fields(s)
	if len(f) > 3 {
		f = f[:3]
	}
	return strings.Join(f, " ")
}
