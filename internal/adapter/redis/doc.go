// Package redis provides the Redis-backed history store and translation cache.
//
// Every client built by NewClient carries two hooks: one recording command
// metrics and one guarding all commands with a circuit breaker.
package redis
