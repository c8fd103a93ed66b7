package middleware

import (
	"testing"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	// Burst of 2 is allowed, the third immediate request is not
	if !rl.allow("ip:1.2.3.4") {
		t.Error("first request should be allowed")
	}
	if !rl.allow("ip:1.2.3.4") {
		t.Error("second request within burst should be allowed")
	}
	if rl.allow("ip:1.2.3.4") {
		t.Error("third immediate request should be limited")
	}

	// Independent keys get independent buckets
	if !rl.allow("ip:5.6.7.8") {
		t.Error("different client should have its own bucket")
	}
}
