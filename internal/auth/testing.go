package auth

import "context"

// SetPlayerIDForTest injects a player ID into the context for testing purposes.
func SetPlayerIDForTest(ctx context.Context, playerID string) context.Context {
	return context.WithValue(ctx, playerIDKey, playerID)
}
