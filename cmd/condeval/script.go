package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/outpost-build/condeval/internal/blockctl"
	"github.com/outpost-build/condeval/internal/ifexpr"
)

// parseScript reads a minimal invocation-per-line surface format:
//
//	command_name arg1 "quoted arg" arg3
//
// Blank lines and lines starting with # are ignored. This stands in
// for the real build-configuration parser, which is out of scope here,
// just enough to drive the block-control machine end to end.
func parseScript(r io.Reader) ([]blockctl.Invocation, error) {
	scanner := bufio.NewScanner(r)
	var invs []blockctl.Invocation
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, args, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		invs = append(invs, blockctl.Invocation{
			Name:     name,
			Args:     args,
			Location: fmt.Sprintf("%d", lineNo),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return invs, nil
}

func parseLine(line string) (string, []ifexpr.Arg, error) {
	fields, err := splitArgs(line)
	if err != nil {
		return "", nil, err
	}
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty invocation")
	}
	name := fields[0].value
	args := make([]ifexpr.Arg, 0, len(fields)-1)
	for _, f := range fields[1:] {
		args = append(args, ifexpr.Arg{Value: f.value, WasQuoted: f.quoted})
	}
	return name, args, nil
}

type field struct {
	value  string
	quoted bool
}

// splitArgs performs shell-like whitespace splitting with double-
// quoted segments, preserving whether each resulting field was
// quoted.
func splitArgs(line string) ([]field, error) {
	var fields []field
	var cur strings.Builder
	inQuotes := false
	quotedField := false
	started := false

	flush := func() {
		if started {
			fields = append(fields, field{value: cur.String(), quoted: quotedField})
		}
		cur.Reset()
		started = false
		quotedField = false
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			quotedField = true
			started = true
		case c == ' ' || c == '\t':
			if inQuotes {
				cur.WriteByte(c)
			} else {
				flush()
			}
		default:
			cur.WriteByte(c)
			started = true
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote")
	}
	flush()
	return fields, nil
}
