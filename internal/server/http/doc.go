// Package httpserver exposes the store over a small JSON API: template
// management, log commits, cursor-based paging, and input history lookups.
package httpserver
