package presence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkeye/Consult/internal/domain"
)

func TestKey(t *testing.T) {
	if got := Key("R1"); got != "consult:presence:R1" {
		t.Fatalf("key = %q", got)
	}
}

// Needs a live server: CONSULT_TEST_REDIS=localhost:6379 go test ./...
func TestRoomPresenceRoundTrip(t *testing.T) {
	addr := os.Getenv("CONSULT_TEST_REDIS")
	if addr == "" {
		t.Skip("CONSULT_TEST_REDIS not set")
	}
	ctx := context.Background()
	p, err := NewRedis(ctx, &redis.Options{Addr: addr}, time.Minute)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer p.Close()

	room := domain.RoomID("presence-test-" + time.Now().Format("150405.000"))
	if err := p.RoomPresence(ctx, room, 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	if n, err := p.Lookup(ctx, room); err != nil || n != 2 {
		t.Fatalf("lookup = %d, %v", n, err)
	}
	if err := p.RoomPresence(ctx, room, 0); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n, err := p.Lookup(ctx, room); err != nil || n != 0 {
		t.Fatalf("lookup after clear = %d, %v", n, err)
	}
}
