package service

import "time"

// GetExpiresAt converts an OAuth expires_in window to an absolute deadline.
func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}
