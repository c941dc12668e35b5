package assist

// ResolvePendingIntent merges the dual-sourced pending-intent state for a
// turn. Precedence: explicit client field, then the intent embedded in
// client thread state, then server-side session; first non-empty wins.
// A missing or malformed thread-state blob reads as empty.
func ResolvePendingIntent(clientField string, threadState map[string]any, serverSession string) string {
	if clientField != "" {
		return clientField
	}
	if ts := PendingFromThreadState(threadState); ts != "" {
		return ts
	}
	return serverSession
}

// PendingFromThreadState digs the pending_intent out of a client-supplied
// thread-state blob, tolerating any shape.
func PendingFromThreadState(threadState map[string]any) string {
	if threadState == nil {
		return ""
	}
	if s, ok := threadState["pending_intent"].(string); ok {
		return s
	}
	return ""
}
