// Package auction assigns night tasks to runners with an ascending
// epsilon-auction. Each round works on a frozen copy of the prices, so every
// unassigned bidder sees the same market before any task changes hands.
package auction

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"mazerunner/pkg/engine/world"
)

var (
	// ErrCardinality is returned when the number of bidders differs from the number of tasks
	ErrCardinality = errors.New("bidder and task counts differ")
	// ErrBidLength is returned when a bid vector does not cover every task
	ErrBidLength = errors.New("bid vector length does not match task count")
	// ErrNonFiniteBid is returned for NaN or infinite bids
	ErrNonFiniteBid = errors.New("bid is not finite")
	// ErrEpsilon is returned when the bid increment is not a positive number
	ErrEpsilon = errors.New("epsilon must be positive")
)

// DefaultEpsilon is the minimum price increment
const DefaultEpsilon = 0.01

// Award is the winner of one task and the price it paid
type Award struct {
	Bidder int
	Price  float64
}

type offer struct {
	bidder int
	price  float64
}

// Assign runs the auction and returns the winning bidder per task index.
// bids maps a bidder id to its value for every task. The result is a
// bijection: every task and every bidder appears exactly once.
func Assign(bids map[int][]float64, tasks []world.Coord, epsilon float64) (map[int]Award, error) {
	if err := validate(bids, len(tasks), epsilon); err != nil {
		return nil, err
	}

	n := len(tasks)
	bidders := make([]int, 0, len(bids))
	for id := range bids {
		bidders = append(bidders, id)
	}
	sort.Ints(bidders)

	prices := make([]float64, n)
	owner := make([]int, n)
	for j := range owner {
		owner[j] = -1
	}
	holding := make(map[int]int, n)

	for round := 0; len(holding) < n; round++ {
		snapshot := append([]float64(nil), prices...)
		offers := make(map[int]offer)

		for _, id := range bidders {
			if _, ok := holding[id]; ok {
				continue
			}
			task, price := bestBid(bids[id], snapshot, epsilon)
			if cur, ok := offers[task]; !ok || price > cur.price {
				offers[task] = offer{bidder: id, price: price}
			}
		}

		for task, o := range offers {
			if prev := owner[task]; prev != -1 {
				delete(holding, bidders[prev])
			}
			owner[task] = indexOf(bidders, o.bidder)
			holding[o.bidder] = task
			prices[task] = o.price
		}
	}

	out := make(map[int]Award, n)
	for task, idx := range owner {
		out[task] = Award{Bidder: bidders[idx], Price: prices[task]}
	}
	return out, nil
}

// bestBid picks the task with the highest value minus price and the price to offer for it
func bestBid(values, prices []float64, epsilon float64) (int, float64) {
	bestTask := -1
	best, second := math.Inf(-1), math.Inf(-1)
	for j, v := range values {
		net := v - prices[j]
		switch {
		case net > best:
			second = best
			best, bestTask = net, j
		case net > second:
			second = net
		}
	}
	if len(values) == 1 {
		second = best
	}
	price := prices[bestTask] + (best - second) + epsilon
	// At large magnitudes the increment can vanish in rounding; a winning
	// bid must still move the price or the market never clears.
	if !(price > prices[bestTask]) {
		price = math.Nextafter(prices[bestTask], math.Inf(1))
	}
	return bestTask, price
}

func validate(bids map[int][]float64, nTasks int, epsilon float64) error {
	if !(epsilon > 0) || math.IsInf(epsilon, 0) {
		return fmt.Errorf("%w: got %v", ErrEpsilon, epsilon)
	}
	if len(bids) != nTasks {
		return fmt.Errorf("%w: %d bidders, %d tasks", ErrCardinality, len(bids), nTasks)
	}
	for id, vec := range bids {
		if len(vec) != nTasks {
			return fmt.Errorf("%w: bidder %d sent %d bids for %d tasks", ErrBidLength, id, len(vec), nTasks)
		}
		for j, v := range vec {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: bidder %d task %d", ErrNonFiniteBid, id, j)
			}
		}
	}
	return nil
}

func indexOf(sorted []int, id int) int {
	return sort.SearchInts(sorted, id)
}

// Pad makes a bid table square. Missing bidders are added with negative ids
// and zero bids; missing tasks are appended to every vector as zero-valued
// dummies. It returns the padded table and the padded task count. Tasks at
// index >= the original count, and awards to negative ids, are dummies.
func Pad(bids map[int][]float64, nTasks int) (map[int][]float64, int) {
	size := nTasks
	if len(bids) > size {
		size = len(bids)
	}
	out := make(map[int][]float64, size)
	for id, vec := range bids {
		padded := make([]float64, size)
		copy(padded, vec)
		out[id] = padded
	}
	for dummy := -1; len(out) < size; dummy-- {
		if _, taken := out[dummy]; taken {
			continue
		}
		out[dummy] = make([]float64, size)
	}
	return out, size
}
