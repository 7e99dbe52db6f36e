// Package logger wraps zap with a sugared global logger that travels on
// context.Context. Services pull the logger from their context so that names
// and key-value pairs attached upstream (sweep id, group id, trigger) follow
// every line they write.
package logger
