/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Sentinel errors for table schema violations and empty distributions.
*/

package table

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema reports a table missing a required field or keying.
	ErrSchema = errors.New("schema validation failed")
	// ErrZeroMass reports an attempt to normalise a table with no probability mass.
	ErrZeroMass = errors.New("zero probability mass")
)

func schemaf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}
