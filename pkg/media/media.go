// Package media resolves stored image references into public URLs.
package media

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Resolver joins image references onto a base URL. References that are already absolute
// URLs pass through unchanged.
type Resolver struct {
	base *url.URL
}

// NewResolver parses baseURL; it must be absolute
func NewResolver(baseURL string) (*Resolver, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse media base URL")
	}
	if !base.IsAbs() {
		return nil, errors.Errorf("media base URL %q must be absolute", baseURL)
	}
	return &Resolver{base: base}, nil
}

// URL returns the public location of ref
func (r *Resolver) URL(ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	rel := &url.URL{Path: strings.TrimLeft(ref, "/")}
	return r.base.ResolveReference(rel).String()
}
