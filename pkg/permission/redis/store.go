package redis

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/infinitewater/bucket/pkg/permission"
	"github.com/redis/go-redis/v9"
)

// Store keeps permissions in Redis so several game servers can share grants.
//
// Layout:
//
//	<prefix>registered    SET of registered permission names
//	<prefix>actor:<id>    SET of permission names granted to the actor
type Store struct {
	client      *redis.Client
	keyPrefix   string
	checkScript *redis.Script
	grantScript *redis.Script
}

// Config holds configuration for the Redis permission store.
type Config struct {
	Client    *redis.Client
	KeyPrefix string // Optional prefix for Redis keys (default: "infinitewaterbucket:")
}

// NewStore creates a new Redis-backed permission store.
func NewStore(cfg Config) *Store {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "infinitewaterbucket:"
	}

	// Registered and granted in one round trip
	checkScript := redis.NewScript(`
		if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 0 then
			return 0
		end
		return redis.call("SISMEMBER", KEYS[2], ARGV[1])
	`)

	// Refuse grants of unregistered permissions atomically
	grantScript := redis.NewScript(`
		if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 0 then
			return -1
		end
		redis.call("SADD", KEYS[2], ARGV[1])
		return 1
	`)

	return &Store{
		client:      cfg.Client,
		keyPrefix:   prefix,
		checkScript: checkScript,
		grantScript: grantScript,
	}
}

// KeyPrefix returns the current key prefix (useful for testing).
func (s *Store) KeyPrefix() string {
	return s.keyPrefix
}

func (s *Store) registeredKey() string {
	return s.keyPrefix + "registered"
}

func (s *Store) actorKey(actorID string) string {
	return s.keyPrefix + "actor:" + actorID
}

// Register declares a permission.
func (s *Store) Register(name string) error {
	if name == "" {
		return fmt.Errorf("register permission: empty name")
	}
	if err := s.client.SAdd(context.Background(), s.registeredKey(), name).Err(); err != nil {
		return fmt.Errorf("register permission %q: %w", name, err)
	}
	return nil
}

// HasPermission reports whether the actor holds a registered permission.
func (s *Store) HasPermission(actorID, name string) (bool, error) {
	result, err := s.checkScript.Run(
		context.Background(),
		s.client,
		[]string{s.registeredKey(), s.actorKey(actorID)},
		name,
	).Int()
	if err != nil {
		return false, fmt.Errorf("check permission %q: %w", name, err)
	}
	return result == 1, nil
}

// Grant gives the actor a registered permission.
func (s *Store) Grant(actorID, name string) error {
	result, err := s.grantScript.Run(
		context.Background(),
		s.client,
		[]string{s.registeredKey(), s.actorKey(actorID)},
		name,
	).Int()
	if err != nil {
		return fmt.Errorf("grant %q: %w", name, err)
	}
	if result < 0 {
		return fmt.Errorf("grant %q: %w", name, permission.ErrUnknownPermission)
	}

	log.Printf("[PERMISSION] granted actor=%s permission=%s", actorID, name)
	return nil
}

// Revoke removes a permission from the actor.
func (s *Store) Revoke(actorID, name string) error {
	if err := s.client.SRem(context.Background(), s.actorKey(actorID), name).Err(); err != nil {
		return fmt.Errorf("revoke %q: %w", name, err)
	}
	return nil
}

// Granted lists the actor's permissions in sorted order.
func (s *Store) Granted(actorID string) ([]string, error) {
	names, err := s.client.SMembers(context.Background(), s.actorKey(actorID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Ensure Store implements the permission.Store interface.
var _ permission.Store = (*Store)(nil)
