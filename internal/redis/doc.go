// Package redis implements the vote debouncer on top of go-redis. Redis is
// an optional dependency: when no URL is configured the service layer skips
// debouncing entirely.
package redis
