// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (errors.go, language.go, history.go, etc.)
// with shared types and cross-cutting interfaces. No implementation code beyond small
// value helpers - just contracts. Keeps adapters and the session core free of each other.
package domain
