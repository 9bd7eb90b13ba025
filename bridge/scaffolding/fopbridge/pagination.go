// Package fopbridge connects the fop paging primitives to HTTP: query
// parameters in, Link headers out.
package fopbridge

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrazmi/todolist/core/scaffolding/fop"
)

// Query parameter names.
const (
	PageSizeParam  = "pageSize"
	PageTokenParam = "pageToken"
)

// ParsePage reads the page size and token from the request's query string.
func ParsePage(r *http.Request) (fop.PageStringCursor, error) {
	q := r.URL.Query()
	return fop.ParsePageStringCursor(q.Get(PageSizeParam), q.Get(PageTokenParam))
}

// NextLink returns the Link header value pointing at the page that starts at
// cursor. Other query parameters of r are kept.
func NextLink(r *http.Request, limit int, cursor string) string {
	u := url.URL{
		Scheme: scheme(r),
		Host:   r.Host,
		Path:   r.URL.Path,
	}

	q := r.URL.Query()
	q.Set(PageSizeParam, strconv.Itoa(limit))
	q.Set(PageTokenParam, cursor)
	u.RawQuery = q.Encode()

	return fmt.Sprintf(`<%s>; rel="next"`, u.String())
}

// SetNextLink sets the Link header on w when page has a successor.
func SetNextLink[T any](w http.ResponseWriter, r *http.Request, limit int, page fop.Page[T]) {
	if w == nil || !page.HasNext() {
		return
	}
	w.Header().Set("Link", NextLink(r, limit, page.NextCursor))
}

func scheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
