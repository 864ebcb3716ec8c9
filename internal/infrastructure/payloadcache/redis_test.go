package payloadcache

import (
	"context"
	"testing"
)

func TestNewRedisRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := NewRedis(context.Background(), "http://not-redis"); err == nil {
		t.Fatalf("expected invalid redis url to fail")
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	t.Parallel()

	r := &Redis{prefix: defaultKeyPrefix}
	if got := r.key("sportmonks:/leagues/8"); got != "reconcile:payload:sportmonks:/leagues/8" {
		t.Fatalf("unexpected key: %s", got)
	}
}
