package fund

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"lukechampine.com/blake3"

	"BasketMint/internal/model"
)

// entry is the serialization point for one fund. Every read-modify-write of
// the fund's ledger happens under mu.
type entry struct {
	mu   sync.Mutex
	fund *model.Fund
}

// Registry stores fund definitions. Its own lock only guards the index maps;
// operations on different funds never contend on it for longer than a lookup.
type Registry struct {
	mu        sync.RWMutex
	funds     map[string]*entry
	byCreator map[string][]string
	counter   atomic.Uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funds:     make(map[string]*entry),
		byCreator: make(map[string][]string),
	}
}

// insert assigns a fresh id to f and records it. The id is derived from a
// monotonically increasing counter plus the creator and a content hash of the
// creation parameters; a clash with any existing id advances the counter.
func (r *Registry) insert(f *model.Fund) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		id := fundID(r.counter.Add(1), f)
		if _, exists := r.funds[id]; exists {
			continue
		}
		f.ID = id
		r.funds[id] = &entry{fund: f}
		r.byCreator[f.Creator] = append(r.byCreator[f.Creator], id)
		return id
	}
}

// restore re-registers a fund loaded from storage under its existing id.
func (r *Registry) restore(f *model.Fund) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.ID == "" {
		return fmt.Errorf("%w: restored fund has no id", ErrInvalidFund)
	}
	if _, exists := r.funds[f.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidFund, f.ID)
	}
	if f.Trackers == nil {
		f.Trackers = make(map[string]*model.Tracker)
	}
	r.funds[f.ID] = &entry{fund: f}
	r.byCreator[f.Creator] = append(r.byCreator[f.Creator], f.ID)
	return nil
}

func (r *Registry) lookup(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.funds[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFundNotFound, id)
	}
	return e, nil
}

// FundsByCreator returns the ids created by creator in creation order.
func (r *Registry) FundsByCreator(creator string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.byCreator[creator]...)
}

// IDs returns every registered fund id, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.funds))
	for id := range r.funds {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of funds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funds)
}

func fundID(counter uint64, f *model.Fund) string {
	h := blake3.New(32, nil)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)
	h.Write(buf[:])
	writeField(h, f.Creator)
	writeField(h, f.Name)
	writeField(h, f.Symbol)
	for _, c := range f.Components {
		writeField(h, c.Asset)
		binary.BigEndian.PutUint64(buf[:], uint64(c.TargetBP))
		h.Write(buf[:])
	}
	sum := h.Sum(nil)
	return "fund-" + hex.EncodeToString(sum[:20])
}

// writeField length-prefixes s so adjacent fields cannot run together.
func writeField(h *blake3.Hasher, s string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}
