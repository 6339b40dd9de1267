// Package logger provides slog helpers shared across the module: a small
// factory for constructing configured *slog.Logger instances and typed
// attribute constructors that keep log keys consistent (user_id,
// session_id, component, error).
package logger
