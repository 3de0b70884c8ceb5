package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/infinitewater/bucket/pkg/hookclient"
	"github.com/infinitewater/bucket/pkg/permission"
	"github.com/infinitewater/bucket/pkg/refill"
)

// Simulates the game host: optionally grants the use permission, then reports
// one water use from a container in the actor's inventory.
func main() {
	server := flag.String("server", "http://localhost:8081", "bridge base URL")
	secret := flag.String("secret", os.Getenv("HOOK_SECRET"), "shared hook secret")
	actor := flag.String("actor", "76561198000000000", "owning player ID")
	kind := flag.String("kind", string(refill.KindWater), "consumed substance")
	containerType := flag.String("container", "bucket.water", "holder item type")
	amount := flag.Int("amount", 50, "requested consumption")
	grant := flag.Bool("grant", false, "grant "+permission.Use+" before sending")
	flag.Parse()

	client := hookclient.New(hookclient.Config{BaseURL: *server, Secret: *secret})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if *grant {
		if err := client.Grant(ctx, *actor, permission.Use); err != nil {
			fmt.Printf("Grant failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Granted %s to %s\n", permission.Use, *actor)
	}

	inventory := &refill.Container{Owner: &refill.Actor{ID: *actor}}
	holder := &refill.Item{Type: *containerType, Container: inventory}
	event := refill.ConsumptionEvent{
		Kind:   refill.ConsumableKind(*kind),
		Item:   &refill.Item{Type: *kind, Parent: holder, Container: &refill.Container{Parent: holder}},
		Amount: *amount,
	}

	start := time.Now()
	d, err := client.ItemUse(ctx, event)
	if err != nil {
		fmt.Printf("Item use failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s from %s: requested %d, consumed %d (%s) in %v\n",
		*kind, *containerType, *amount, d.Amount, d.Reason, time.Since(start))
}
