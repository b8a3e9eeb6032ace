// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assets maps image references found in assistant payloads to
// fetchable URLs under the backend's static image route.
//
// The backend stores image paths in whatever format its ingestion pipeline
// produced (Windows or POSIX separators, relative or absolute). Only the
// final path segment is meaningful to the static route, so the resolver
// discards everything else.
package assets

import (
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the backend origin used when nothing is configured.
	DefaultBaseURL = "http://localhost:5000"

	// DefaultRoute is the static route the backend serves images from.
	DefaultRoute = "final_cleaned_dataset"

	// NoImage is the legacy sentinel the backend emits for "no image".
	NoImage = "null"
)

// Resolver turns image references into URLs. The zero value is not useful;
// use NewResolver.
type Resolver struct {
	baseURL string
	route   string
}

// NewResolver creates a resolver for the given backend origin and static route.
// Empty arguments fall back to DefaultBaseURL and DefaultRoute.
func NewResolver(baseURL, route string) *Resolver {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	route = strings.Trim(strings.TrimSpace(route), "/")
	if route == "" {
		route = DefaultRoute
	}
	return &Resolver{baseURL: baseURL, route: route}
}

// BaseURL returns the backend origin without a trailing slash.
func (r *Resolver) BaseURL() string {
	return r.baseURL
}

// Route returns the static route without surrounding slashes.
func (r *Resolver) Route() string {
	return r.route
}

// Resolve maps an arbitrary value to an image URL.
//
// It returns "" for nil, non-string values, blank strings, the "null"
// sentinel and paths whose final segment is empty. An empty result means
// the caller should omit the image. Resolve never panics.
func (r *Resolver) Resolve(path any) (resolved string) {
	defer func() {
		if recover() != nil {
			resolved = ""
		}
	}()

	s, ok := path.(string)
	if !ok {
		return ""
	}
	name := Filename(s)
	if name == "" {
		return ""
	}
	return r.baseURL + "/" + r.route + "/" + url.PathEscape(name)
}

// ResolveAll resolves refs in order, dropping references that resolve to "".
func (r *Resolver) ResolveAll(refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if u := r.Resolve(ref); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Filename extracts the last segment of a path written with either
// separator style. It returns "" for blank input and the sentinel.
func Filename(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == NoImage {
		return ""
	}
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return strings.TrimSpace(path)
}
