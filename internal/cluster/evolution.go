package cluster

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/driftcap/narrativescan/internal/features"
)

// Signature is a content hash of a cluster's membership. It exists only for
// cross-run telemetry; nothing downstream depends on it for correctness.
type Signature struct {
	Hash    string
	Members map[string]bool
}

// SignCluster hashes the sorted member addresses.
func SignCluster(c Cluster, records []*features.Record) Signature {
	addrs := make([]string, 0, len(c.Members))
	members := make(map[string]bool, len(c.Members))
	for _, i := range c.Members {
		addr := records[i].Token.Address
		addrs = append(addrs, addr)
		members[addr] = true
	}
	sort.Strings(addrs)

	h := sha256.New()
	for _, a := range addrs {
		h.Write([]byte(a))
		h.Write([]byte{0})
	}
	return Signature{Hash: hex.EncodeToString(h.Sum(nil)), Members: members}
}

// Evolution summarizes how the current run's clusters relate to the previous
// one. Observational only, never blocking.
type Evolution struct {
	New         int `json:"new"`
	Merged      int `json:"merged"`
	Split       int `json:"split"`
	Disappeared int `json:"disappeared"`
	Stable      int `json:"stable"`
}

// History is the bounded ring of per-run signature sets.
type History struct {
	mu    sync.Mutex
	runs  [][]Signature
	depth int
}

// NewHistory creates a ring retaining depth runs; the oldest run evicts.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultConfig().HistoryDepth
	}
	return &History{depth: depth}
}

// Observe diffs the current signatures against the most recent run and then
// appends them to the ring.
func (h *History) Observe(current []Signature) Evolution {
	h.mu.Lock()
	defer h.mu.Unlock()

	var ev Evolution
	if len(h.runs) == 0 {
		ev.New = len(current)
	} else {
		prev := h.runs[len(h.runs)-1]
		matchedPrev := make([]bool, len(prev))
		for _, cur := range current {
			overlaps := 0
			exact := false
			for j, old := range prev {
				ov := overlap(cur.Members, old.Members)
				if ov == 0 {
					continue
				}
				overlaps++
				matchedPrev[j] = true
				if cur.Hash == old.Hash {
					exact = true
				}
			}
			switch {
			case overlaps == 0:
				ev.New++
			case overlaps > 1:
				ev.Merged++
			case exact:
				ev.Stable++
			default:
				ev.Stable++
			}
		}
		for j, old := range prev {
			if matchedPrev[j] {
				// A previous cluster overlapping several current ones split.
				n := 0
				for _, cur := range current {
					if overlap(cur.Members, old.Members) > 0 {
						n++
					}
				}
				if n > 1 {
					ev.Split++
				}
				continue
			}
			ev.Disappeared++
		}
	}

	h.runs = append(h.runs, current)
	if len(h.runs) > h.depth {
		h.runs = h.runs[1:]
	}
	return ev
}

func overlap(a, b map[string]bool) int {
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}
