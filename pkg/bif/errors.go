/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Parse errors for BIF documents.
*/

package bif

import (
	"errors"
	"fmt"
)

// ErrParse reports a malformed or inconsistent BIF document.
var ErrParse = errors.New("bif parse error")

// ParseError locates a parse failure at a block of the document.
type ParseError struct {
	Block string
	Line  int
	Msg   string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Block == "" {
		return fmt.Sprintf("%s: %s", ErrParse.Error(), e.Msg)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s: %s", ErrParse.Error(), e.Line, e.Block, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrParse.Error(), e.Block, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

func parseErrorf(block string, line int, format string, args ...any) error {
	return &ParseError{Block: block, Line: line, Msg: fmt.Sprintf(format, args...)}
}
