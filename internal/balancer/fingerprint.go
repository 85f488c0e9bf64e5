package balancer

// fingerprintHistory remembers recently seen composition fingerprints
// up to a fixed capacity, evicting the oldest entry first so repeat
// detection behaves deterministically.
type fingerprintHistory struct {
	capacity int
	seen     map[string]struct{}
	order    []string
}

func newFingerprintHistory(capacity int) *fingerprintHistory {
	return &fingerprintHistory{
		capacity: capacity,
		seen:     make(map[string]struct{}, capacity),
	}
}

func (h *fingerprintHistory) Contains(fp string) bool {
	_, ok := h.seen[fp]
	return ok
}

// Record adds a fingerprint, dropping the oldest one when the history
// is full. Recording a known fingerprint is a no-op.
func (h *fingerprintHistory) Record(fp string) {
	if h.Contains(fp) {
		return
	}
	if len(h.order) >= h.capacity {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.seen, oldest)
	}
	h.seen[fp] = struct{}{}
	h.order = append(h.order, fp)
}

func (h *fingerprintHistory) Len() int {
	return len(h.order)
}
