// Package ovpn parses OpenVPN-style client configuration files.
//
// The format is line oriented: `directive value` pairs, flag-only
// directives, `#` comments, and tagged multi-line blocks such as
// <ca>...</ca> used to embed certificates and keys. The format comes from
// third-party tooling, so the parser is deliberately permissive: repeated
// directives overwrite silently and an unterminated tag at end-of-file is
// not an error.
package ovpn

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	tagClosePattern = regexp.MustCompile(`^</(.*)>$`)
	tagOpenPattern  = regexp.MustCompile(`^<(.*)>$`)
)

// Directive is a single parsed configuration entry. Flag-only directives
// (a line with no value, e.g. "persist-tun") have Flag set and an empty
// Value; tagged blocks carry their lines concatenated verbatim in Value.
type Directive struct {
	Value string
	Flag  bool
}

// Config maps directive names to their parsed values. Later occurrences of
// a directive overwrite earlier ones.
type Config map[string]Directive

// Parse reads and parses the OpenVPN client config at path. A missing file
// is returned as the underlying *os.PathError so callers can inspect the
// OS error code.
func Parse(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(string(data)), nil
}

// parse processes the config content line by line.
func parse(content string) Config {
	config := make(Config)
	inTag := ""
	tagged := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Exit tag lines (</some_tag>)
		if tagClosePattern.MatchString(line) {
			tagged = false
			inTag = ""
			continue
		}

		// Enter tag lines (<some_tag>)
		if m := tagOpenPattern.FindStringSubmatch(line); m != nil {
			tagged = true
			inTag = m[1]
			config[inTag] = Directive{}
			continue
		}

		// Content inside tags is concatenated verbatim, no separator
		if tagged {
			d := config[inTag]
			d.Value += line
			config[inTag] = d
			continue
		}

		// Common lines: split name from value at the first space
		if i := strings.Index(line, " "); i >= 0 {
			config[line[:i]] = Directive{Value: line[i+1:]}
		} else {
			config[line] = Directive{Flag: true}
		}
	}

	return config
}

// Has reports whether the directive is present in any form.
func (c Config) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Value returns the directive's value, or the empty string if it is absent
// or a flag-only directive.
func (c Config) Value(name string) string {
	return c[name].Value
}

// IsFlag reports whether the directive appeared in flag form (no value).
func (c Config) IsFlag(name string) bool {
	return c[name].Flag
}

// Dev returns the tunnel interface name from the `dev` directive, or an
// error if the config does not declare one. The watchdog needs it for
// route cleanup and interface bring-up.
func (c Config) Dev() (string, error) {
	d, ok := c["dev"]
	if !ok || d.Value == "" {
		return "", fmt.Errorf("config has no dev directive")
	}
	return d.Value, nil
}
