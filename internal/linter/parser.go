package linter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pybridge-dev/pybridge/pkg/shared/errors"
)

// DefaultPattern matches the `line,column,type,code:message` format the
// bundled linters are configured to emit. Columns may be negative: some
// tools use a negative sentinel for "unknown".
const DefaultPattern = `^(?P<line>\d+),(?P<column>-?\d+),(?P<type>\w+),(?P<code>\w+\d*):(?P<message>.*)$`

// Parser turns one line of linter output into a LintMessage using a pattern
// with named capture groups.
type Parser struct {
	provider     string
	pattern      *regexp.Regexp
	columnOffset int
	groups       map[string]int
}

// NewParser compiles the pattern and checks it exposes the required named
// groups: line, column, type, code and message. A file group is optional.
func NewParser(provider, pattern string, columnOffset int) (*Parser, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern for linter %q: %w", provider, err)
	}

	groups := map[string]int{}
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = i
		}
	}
	for _, required := range []string{"line", "column", "type", "code", "message"} {
		if _, ok := groups[required]; !ok {
			return nil, fmt.Errorf("pattern for linter %q is missing the %q capture group", provider, required)
		}
	}

	return &Parser{
		provider:     provider,
		pattern:      re,
		columnOffset: columnOffset,
		groups:       groups,
	}, nil
}

// Parse matches one line of output against the pattern. Lines that do not
// match, or that match with a malformed line number, produce a recoverable
// ParseError; the caller logs it and continues with the rest of the batch.
func (p *Parser) Parse(line string) (*LintMessage, error) {
	line = strings.TrimSuffix(line, "\r")

	match := p.pattern.FindStringSubmatch(line)
	if match == nil {
		return nil, errors.NewParseError(p.provider, line, "line does not match the expected pattern")
	}

	lineNo, err := strconv.Atoi(match[p.groups["line"]])
	if err != nil {
		return nil, errors.NewParseError(p.provider, line, fmt.Sprintf("line number is not numeric: %v", err))
	}

	message := &LintMessage{
		Line:     lineNo,
		Column:   p.parseColumn(match[p.groups["column"]]),
		Type:     match[p.groups["type"]],
		Code:     match[p.groups["code"]],
		Message:  match[p.groups["message"]],
		Provider: p.provider,
	}
	if idx, ok := p.groups["file"]; ok {
		message.File = match[idx]
	}

	return message, nil
}

// parseColumn clamps non-numeric and non-positive columns to 0. The offset
// is only subtracted from valid positive columns, never from a clamped zero,
// and the adjusted value never goes below 0.
func (p *Parser) parseColumn(raw string) int {
	column, err := strconv.Atoi(raw)
	if err != nil || column <= 0 {
		return 0
	}
	column -= p.columnOffset
	if column < 0 {
		return 0
	}
	return column
}
