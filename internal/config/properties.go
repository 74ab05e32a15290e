// File: internal/config/properties.go
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Properties is a read-only key=value store. When a key appears on several
// lines the first occurrence wins, and a value ends at the first whitespace.
type Properties struct {
	values map[string]string
}

// LoadProperties reads a properties file from disk.
func LoadProperties(path string) (*Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open properties file: %w", err)
	}
	defer f.Close()
	return ParseProperties(f)
}

// ParseProperties reads key=value lines. Lines without "=" or with an empty
// value (after the first whitespace cut) are ignored.
func ParseProperties(r io.Reader) (*Properties, error) {
	p := &Properties{values: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		key, rest, ok := strings.Cut(line, "=")
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		if _, seen := p.values[key]; seen {
			continue
		}
		value := rest
		if i := strings.IndexAny(value, " \t"); i >= 0 {
			value = value[:i]
		}
		if value == "" {
			continue
		}
		p.values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read properties: %w", err)
	}
	return p, nil
}

// Get returns the value of key or an error naming the missing key.
func (p *Properties) Get(key string) (string, error) {
	v, ok := p.values[key]
	if !ok {
		return "", fmt.Errorf("parameter %q not found in properties file", key)
	}
	return v, nil
}

// Credentials is the login used by every scenario.
type Credentials struct {
	// URL echoes the optional url key. Navigation always uses the
	// configured target, so it is informational only.
	URL      string
	Username string
	Password string
}

// Credentials reads the username and password keys, plus url when present.
func (p *Properties) Credentials() (Credentials, error) {
	var c Credentials
	var err error
	c.URL, _ = p.Get("url")
	if c.Username, err = p.Get("username"); err != nil {
		return c, err
	}
	if c.Password, err = p.Get("password"); err != nil {
		return c, err
	}
	return c, nil
}
