// Package policy holds the runner strategies. A policy only sees its own
// observation and returns one action per call.
package policy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"mazerunner/pkg/game/state"
)

// ErrUnknownPolicy is returned by ByName for unregistered names
var ErrUnknownPolicy = errors.New("unknown policy")

// Policy decides a runner's action from its observation
type Policy interface {
	DecideAction(obs state.Observation) state.Action
	// Reset clears any plan cached between episodes
	Reset()
}

var registry = map[string]func(rng *rand.Rand) Policy{
	"random":      func(rng *rand.Rand) Policy { return NewPureRandom(rng) },
	"pathfinding": func(rng *rand.Rand) Policy { return NewPathFinding(rng) },
	"leaftracker": func(rng *rand.Rand) Policy { return NewLeafTracker(rng) },
}

// ByName builds a policy. Names are case-insensitive and ignore '_' and '-'.
func ByName(name string, rng *rand.Rand) (Policy, error) {
	key := strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(name))
	if key == "purerandom" {
		key = "random"
	}
	build, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPolicy, name, strings.Join(Names(), ", "))
	}
	return build(rng), nil
}

// Names lists the registered policy names
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
