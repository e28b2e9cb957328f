package shared

import "fmt"

// SessionLockKey builds redis keys for per-session critical sections such as
// an in-flight login.
func SessionLockKey(sessionID, name string) string {
	return fmt.Sprintf("session:%s:lock:%s", sessionID, name)
}
