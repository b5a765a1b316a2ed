package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

const (
	defaultUserAgent      = "Mozilla/5.0 (X11; Linux x86_64; rv:108.0) Gecko/20100101 Firefox/108.0"
	defaultAcceptLanguage = "en-US, en;q=0.75"
	musicOrigin           = "https://music.youtube.com"
)

// Credentials is the persisted YouTube Music session: the request headers of a signed-in browser.
//
// The pipeline treats it as opaque. Only its presence matters for playlist lookups,
// and fetchers forward the headers verbatim.
type Credentials struct {
	Headers map[string]string
}

// LoadCredentials reads a headers file written by [Credentials.Save].
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no headers file at %s", ErrMissingCredentials, path)
		}
		return nil, fmt.Errorf("failed to read headers file: %w", err)
	}

	headers := map[string]string{}
	if err := json.Unmarshal(data, &headers); err != nil {
		return nil, fmt.Errorf("%w: headers file is not a JSON object: %v", ErrInvalidInput, err)
	}

	return &Credentials{Headers: headers}, nil
}

// CredentialsFromCurl builds credentials from a parsed cURL command, filling the headers
// YouTube Music expects when the browser request did not carry them.
func CredentialsFromCurl(c *CurlHeaders) *Credentials {
	headers := map[string]string{
		"user-agent":      defaultUserAgent,
		"accept":          "*/*",
		"accept-language": defaultAcceptLanguage,
		"content-type":    "application/json",
		"x-goog-authuser": "0",
		"x-origin":        musicOrigin,
	}
	for k, v := range c.Headers {
		headers[k] = v
	}
	if c.Cookie != "" {
		headers["cookie"] = c.Cookie
	}
	return &Credentials{Headers: headers}
}

// Save writes the headers as JSON with owner-only permissions, creating parent directories.
func (c *Credentials) Save(path string) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(c.Headers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Header returns the credentials as an [http.Header]. A nil receiver yields an empty header.
func (c *Credentials) Header() http.Header {
	h := http.Header{}
	if c == nil {
		return h
	}
	for k, v := range c.Headers {
		h.Set(k, v)
	}
	return h
}

// Authenticated reports whether the credentials carry a session cookie.
func (c *Credentials) Authenticated() bool {
	return c != nil && c.Headers["cookie"] != ""
}
