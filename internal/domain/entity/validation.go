package entity

import (
	"fmt"
	"net/url"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// ParseAbsoluteURL parses rawURL and requires an http(s) scheme and a host.
// Returns a ValidationError if the URL is empty, too long, malformed or relative.
func ParseAbsoluteURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, &ValidationError{Field: "link", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return nil, &ValidationError{
			Field:   "link",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ValidationError{Field: "link", Message: fmt.Sprintf("malformed URL: %v", err)}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, &ValidationError{Field: "link", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return nil, &ValidationError{Field: "link", Message: "URL must have a valid host"}
	}

	return parsedURL, nil
}

// ValidateURL reports whether rawURL is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	_, err := ParseAbsoluteURL(rawURL)
	return err
}
