package rtc

import (
	"testing"

	"github.com/dkeye/Consult/internal/config"
)

func TestConfigFrom(t *testing.T) {
	if got := ConfigFrom(nil); len(got.ICEServers) != 1 {
		t.Fatalf("default = %+v", got)
	}
	got := ConfigFrom([]config.ICEServer{
		{URLs: []string{"stun:a"}},
		{URLs: []string{"turn:b"}, Username: "u", Credential: "p"},
	})
	if len(got.ICEServers) != 2 {
		t.Fatalf("servers = %+v", got.ICEServers)
	}
	if got.ICEServers[0].Username != "" || got.ICEServers[1].Credential != "p" {
		t.Fatalf("servers = %+v", got.ICEServers)
	}
}
