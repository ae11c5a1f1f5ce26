// Package app provides the application service layer.
//
// Orchestrates use cases: translating finalized speech, proxying raw translation
// requests, detecting languages and maintaining per-client history. Sits between
// the transports (HTTP, websocket sessions) and the domain interfaces.
package app
