package gameplay

import (
	"fmt"
	"math"

	"mazerunner/pkg/engine/world"
	"mazerunner/pkg/game/auction"
	"mazerunner/pkg/game/state"
)

// runAuction collects the bids of every living runner, assigns the open
// tasks and closes the market. Unusable bid vectors count as all zeros.
func (e *Env) runAuction(actions map[int]state.Action) {
	tasks := e.tasks
	e.tasks = nil

	bids := make(map[int][]float64)
	for _, r := range e.alive() {
		bids[r.ID] = e.sanitizeBids(r.ID, actions[r.ID].Bids, len(tasks))
	}

	padded, size := auction.Pad(bids, len(tasks))
	slots := make([]world.Coord, size)
	copy(slots, tasks)

	awards, err := auction.Assign(padded, slots, e.params.AuctionEpsilon)
	if err != nil {
		// Bids are sanitized and padded, so this is a programming error
		e.logger.Error("auction failed", "time", e.time, "error", err)
		return
	}

	won := 0
	for task, award := range awards {
		if award.Bidder < 0 || task >= len(tasks) {
			continue
		}
		for _, r := range e.runners {
			if r.ID == award.Bidder {
				r.Assign(&tasks[task])
				won++
			}
		}
	}
	e.events.Add(fmt.Sprintf("Auction assigned %d of %d tasks", won, len(tasks)))
	e.logger.Debug("auction closed", "time", e.time, "tasks", len(tasks), "assigned", won)
}

// maxBid bounds bid magnitudes so auction prices stay far above float64
// rounding of the epsilon increment.
const maxBid = 1e9

func (e *Env) sanitizeBids(id int, bids []float64, n int) []float64 {
	if len(bids) != n {
		if bids != nil {
			e.logger.Debug("bid vector length mismatch neutralized", "runner", id, "got", len(bids), "want", n)
		}
		return make([]float64, n)
	}
	peak := 0.0
	for _, b := range bids {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			e.logger.Debug("non-finite bid neutralized", "runner", id)
			return make([]float64, n)
		}
		peak = math.Max(peak, math.Abs(b))
	}
	out := append([]float64(nil), bids...)
	if peak > maxBid {
		// Rescale rather than clamp so the runner's ranking of tasks survives
		scale := maxBid / peak
		for i := range out {
			out[i] *= scale
		}
		e.logger.Debug("oversized bids rescaled", "runner", id, "peak", peak)
	}
	return out
}
