//go:build tools
// +build tools

// Package tools declares Go tool dependencies, pinned here so `go mod tidy`
// keeps them in go.sum without their being importable from regular builds.
package tools

import (
	_ "golang.org/x/lint/golint"
	_ "golang.org/x/tools/cmd/stringer"
)
