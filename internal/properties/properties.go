package properties

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"syscall"
)

const (
	maxLineLength = 1 << 20
	utf8BOM       = "\ufeff"
)

// Properties is an immutable set of key/value pairs read from a file.
// A nil *Properties behaves like an empty set.
type Properties struct {
	path   string
	values map[string]string
}

// Load reads the properties file at path. When the file does not exist, including
// when a parent path element is a regular file, it returns found=false and a nil
// error. The file is closed on every return path.
func Load(path string) (props *Properties, found bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if isNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open properties: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close properties: %w", closeErr)
		}
	}()

	props, err = Parse(path, f)
	if err != nil {
		return nil, false, err
	}
	return props, true, nil
}

// Parse reads key=value lines from r. name is used in error messages.
// Blank lines and lines starting with '#' are skipped; each remaining line is
// split on the first '='. Later duplicates replace earlier ones.
func Parse(name string, r io.Reader) (*Properties, error) {
	props := &Properties{
		path:   name,
		values: make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if lineNo == 1 {
			raw = strings.TrimPrefix(raw, utf8BOM)
		}

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &ParseError{Path: name, Line: lineNo, Text: line, Msg: "expected key=value"}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &ParseError{Path: name, Line: lineNo, Text: line, Msg: "empty key"}
		}
		props.values[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return props, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// Path returns the file the properties were read from.
func (p *Properties) Path() string {
	if p == nil {
		return ""
	}
	return p.path
}

// Lookup returns the value for key and whether it was present.
func (p *Properties) Lookup(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	value, ok := p.values[key]
	return value, ok
}

// Require returns the value for key or a *MissingKeyError.
func (p *Properties) Require(key string) (string, error) {
	value, ok := p.Lookup(key)
	if !ok {
		return "", &MissingKeyError{Path: p.Path(), Key: key}
	}
	return value, nil
}

// Keys returns the keys in sorted order.
func (p *Properties) Keys() []string {
	if p == nil {
		return []string{}
	}
	keys := make([]string, 0, len(p.values))
	for key := range p.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len reports the number of distinct keys.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}
