// File: internal/config/properties_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProperties(t *testing.T) {
	input := strings.Join([]string{
		"# login for the qa deployment",
		"url=https://qa-ottoviz.ominf.net",
		"username=tester@example.com trailing words",
		"password=",
		"password=s3cret\r",
		"username=second@example.com",
		"  indented=ignored",
	}, "\n")

	p, err := ParseProperties(strings.NewReader(input))
	require.NoError(t, err)

	url, err := p.Get("url")
	require.NoError(t, err)
	assert.Equal(t, "https://qa-ottoviz.ominf.net", url)

	user, err := p.Get("username")
	require.NoError(t, err)
	assert.Equal(t, "tester@example.com", user, "first match wins, value stops at whitespace")

	pass, err := p.Get("password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pass, "empty values do not match")

	_, err = p.Get("indented")
	assert.Error(t, err)

	_, err = p.Get("token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"token"`)
}

func TestLoadPropertiesCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "properties.txt")
	require.NoError(t, os.WriteFile(path, []byte("url=u\nusername=n\npassword=p\n"), 0o600))

	p, err := LoadProperties(path)
	require.NoError(t, err)
	creds, err := p.Credentials()
	require.NoError(t, err)
	assert.Equal(t, Credentials{URL: "u", Username: "n", Password: "p"}, creds)

	partial, err := ParseProperties(strings.NewReader("url=u\n"))
	require.NoError(t, err)
	_, err = partial.Credentials()
	assert.ErrorContains(t, err, "username")

	noURL, err := ParseProperties(strings.NewReader("username=n\npassword=p\n"))
	require.NoError(t, err)
	creds, err = noURL.Credentials()
	require.NoError(t, err)
	assert.Equal(t, Credentials{Username: "n", Password: "p"}, creds)

	_, err = LoadProperties(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
