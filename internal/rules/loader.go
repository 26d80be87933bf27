package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedRule is returned when a rule file line does not split into
// exactly three or four whitespace-delimited tokens.
var ErrMalformedRule = errors.New("rules: malformed rule line")

// AddFromReader parses whitespace-delimited rule lines from r and adds
// them to the handle. Each line carries "subject object allow" or
// "subject object allow deny"; empty lines are skipped. The first
// failing line aborts the parse, but rules and labels from earlier lines
// stay in the handle.
func (a *Accesses) AddFromReader(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		var err error
		switch len(fields) {
		case 3:
			err = a.Add(fields[0], fields[1], fields[2])
		case 4:
			err = a.AddModify(fields[0], fields[1], fields[2], fields[3])
		default:
			err = ErrMalformedRule
		}
		if err != nil {
			return fmt.Errorf("rules: line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("rules: read: %w", err)
	}
	return nil
}
