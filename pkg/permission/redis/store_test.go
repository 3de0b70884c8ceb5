package redis

import (
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/infinitewater/bucket/pkg/permission"
	goredis "github.com/redis/go-redis/v9"
)

// setupMiniredis creates a miniredis server and returns it with a connected client and cleanup function.
func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *goredis.Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	return mr, client, func() {
		client.Close()
		mr.Close()
	}
}

func TestStore_GrantAndCheck(t *testing.T) {
	_, client, cleanup := setupMiniredis(t)
	defer cleanup()

	s := NewStore(Config{Client: client})
	if err := s.Register(permission.Use); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	has, err := s.HasPermission("player", permission.Use)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if has {
		t.Error("Actor should not hold the permission before a grant")
	}

	if err := s.Grant("player", permission.Use); err != nil {
		t.Fatalf("Grant error: %v", err)
	}

	has, err = s.HasPermission("player", permission.Use)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !has {
		t.Error("Actor should hold the permission after a grant")
	}
}

func TestStore_GrantUnregistered(t *testing.T) {
	_, client, cleanup := setupMiniredis(t)
	defer cleanup()

	s := NewStore(Config{Client: client})

	err := s.Grant("player", permission.Use)
	if !errors.Is(err, permission.ErrUnknownPermission) {
		t.Fatalf("Expected ErrUnknownPermission, got %v", err)
	}
}

func TestStore_UnregisteredNeverHeld(t *testing.T) {
	mr, client, cleanup := setupMiniredis(t)
	defer cleanup()

	s := NewStore(Config{Client: client})

	// Grant written behind the store's back, permission never registered
	mr.SAdd(s.KeyPrefix()+"actor:player", permission.Use)

	has, err := s.HasPermission("player", permission.Use)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if has {
		t.Error("Unregistered permission should never be held")
	}
}

func TestStore_RevokeAndGranted(t *testing.T) {
	_, client, cleanup := setupMiniredis(t)
	defer cleanup()

	s := NewStore(Config{Client: client})
	s.Register(permission.Use)
	s.Register("infinitewaterbucket.admin")
	s.Grant("player", permission.Use)
	s.Grant("player", "infinitewaterbucket.admin")

	names, err := s.Granted("player")
	if err != nil {
		t.Fatalf("Granted error: %v", err)
	}
	if len(names) != 2 || names[0] != "infinitewaterbucket.admin" || names[1] != permission.Use {
		t.Errorf("Unexpected grants: %v", names)
	}

	if err := s.Revoke("player", permission.Use); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	has, _ := s.HasPermission("player", permission.Use)
	if has {
		t.Error("Permission should be gone after revoke")
	}
}

func TestStore_KeyPrefix(t *testing.T) {
	mr, client, cleanup := setupMiniredis(t)
	defer cleanup()

	s := NewStore(Config{Client: client, KeyPrefix: "rust-eu-1:"})
	if s.KeyPrefix() != "rust-eu-1:" {
		t.Errorf("Expected custom prefix, got %q", s.KeyPrefix())
	}

	s.Register(permission.Use)
	s.Grant("player", permission.Use)

	ok, err := mr.SIsMember("rust-eu-1:actor:player", permission.Use)
	if err != nil {
		t.Fatalf("SIsMember error: %v", err)
	}
	if !ok {
		t.Error("Grant should be stored under the custom prefix")
	}
}

func TestStore_DefaultKeyPrefix(t *testing.T) {
	_, client, cleanup := setupMiniredis(t)
	defer cleanup()

	s := NewStore(Config{Client: client})
	if s.KeyPrefix() != "infinitewaterbucket:" {
		t.Errorf("Expected default prefix, got %q", s.KeyPrefix())
	}
}

func TestStore_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewStore(Config{Client: client})
	mr.Close()

	if _, err := s.HasPermission("player", permission.Use); err == nil {
		t.Error("Expected error when redis is unreachable")
	}
}
