package cache

import (
	"fmt"
	"slices"
)

// Write changes the value under one key. Apply receives the current value
// (ok is false when the key holds nothing) and returns the new value and
// whether to store it. Apply must not modify current in place.
type Write struct {
	Key   Key
	Apply func(current any, ok bool) (any, bool)
}

// Mutation describes an optimistic change: the entities it targets and the
// predicted writes
type Mutation struct {
	Name     string
	Entities []string
	Writes   []Write
}

// event is one entry of the write journal. owner is nil for Set.
type event struct {
	seq    uint64
	owner  *Pending
	begin  bool
	writes []Write
}

type snapshot struct {
	key     Key
	value   any
	present bool
	stale   bool
}

// Pending is a mutation that has begun and not yet settled
type Pending struct {
	cache     *QueryCache
	mutation  Mutation
	snapshots []snapshot
	versions  map[string]uint64
	seq       uint64
	settled   bool
	failed    bool
}

// Begin applies the mutation's writes at once. In-flight fetches on every
// affected key are cancelled first and each key is snapshotted for rollback.
func (c *QueryCache) Begin(m Mutation) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &Pending{
		cache:    c,
		mutation: m,
		versions: make(map[string]uint64, len(m.Entities)),
	}
	seen := make(map[Key]bool, len(m.Writes))
	for _, w := range m.Writes {
		e := c.entry(w.Key)
		if !seen[w.Key] {
			seen[w.Key] = true
			c.cancelFlight(w.Key, e)
			p.snapshots = append(p.snapshots, snapshot{key: w.Key, value: e.value, present: e.present, stale: e.stale})
			e.pending++
		}
		c.apply(e, w)
	}
	for _, id := range m.Entities {
		c.versions[id]++
		p.versions[id] = c.versions[id]
	}
	c.open = append(c.open, p)
	p.seq = c.record(p, true, m.Writes...)

	c.logger.Debug("optimistic write", "mutation", m.Name, "keys", len(p.snapshots), "entities", m.Entities)
	return p
}

// apply requires c.mu
func (c *QueryCache) apply(e *entry, w Write) {
	value, ok := w.Apply(e.value, e.present)
	if !ok {
		return
	}
	e.value, e.present = value, true
	e.gen++
}

// Keys returns the keys the mutation touched
func (p *Pending) Keys() []Key {
	keys := make([]Key, 0, len(p.snapshots))
	for _, s := range p.snapshots {
		keys = append(keys, s.key)
	}
	return keys
}

// current requires c.mu
func (p *Pending) current() bool {
	for id, v := range p.versions {
		if p.cache.versions[id] != v {
			return false
		}
	}
	return true
}

// Succeed applies the server-confirmed writes unless a newer mutation on the
// same entity began since, then invalidates every affected key. It reports
// whether the confirmed writes were applied.
func (p *Pending) Succeed(confirmed ...Write) bool {
	c := p.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.settled {
		return false
	}
	p.settled = true

	applied := p.current()
	if applied {
		for _, w := range confirmed {
			c.apply(c.entry(w.Key), w)
		}
		c.record(p, false, confirmed...)
	} else {
		c.logger.Debug("discarded stale confirmation", "mutation", p.mutation.Name)
	}
	p.release()
	return applied
}

// Fail undoes the mutation unless a newer mutation on the same entity began
// since, invalidates every affected key and returns err wrapped with the
// mutation name. Each key goes back to its Begin snapshot with the writes
// of later mutations on other entities applied again, so with nothing else
// in flight the snapshot comes back exactly.
func (p *Pending) Fail(err error) error {
	c := p.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	wrapped := fmt.Errorf("%s: %w", p.mutation.Name, err)
	if p.settled {
		return wrapped
	}
	p.settled = true

	p.failed = true
	if p.current() {
		c.rollback(p)
		c.logger.Debug("rolled back optimistic write", "mutation", p.mutation.Name, "error", err)
	} else {
		c.logger.Debug("skipped rollback of superseded mutation", "mutation", p.mutation.Name, "error", err)
	}
	p.release()
	return wrapped
}

// release requires c.mu
func (p *Pending) release() {
	c := p.cache
	for _, s := range p.snapshots {
		e := c.entry(s.key)
		e.pending--
		e.stale = true
	}
	c.open = slices.DeleteFunc(c.open, func(o *Pending) bool { return o == p })
	c.prune()
}

// record appends writes to the journal and returns their sequence number.
// Nothing is kept while no mutation is open. Requires c.mu.
func (c *QueryCache) record(owner *Pending, begin bool, writes ...Write) uint64 {
	c.seq++
	if len(c.open) > 0 && len(writes) > 0 {
		c.journal = append(c.journal, event{seq: c.seq, owner: owner, begin: begin, writes: writes})
	}
	return c.seq
}

// prune drops journal entries older than every open mutation. Requires c.mu.
func (c *QueryCache) prune() {
	if len(c.open) == 0 {
		c.journal = nil
		return
	}
	oldest := c.open[0].seq
	i := 0
	for i < len(c.journal) && c.journal[i].seq < oldest {
		i++
	}
	c.journal = slices.Delete(c.journal, 0, i)
}

// rollback rebuilds every key p touched from p's snapshot, replaying the
// journaled writes made after p began by anything other than p and failed
// mutations. Open mutations that began later get their snapshots rebased
// so their own rollback cannot bring p's writes back. Requires c.mu.
func (c *QueryCache) rollback(p *Pending) {
	for _, s := range p.snapshots {
		value, present := s.value, s.present
		for _, ev := range c.journal {
			if ev.seq <= p.seq || ev.owner == p || (ev.owner != nil && ev.owner.failed) {
				continue
			}
			if ev.begin && !ev.owner.settled {
				ev.owner.rebase(s.key, value, present)
			}
			for _, w := range ev.writes {
				if w.Key != s.key {
					continue
				}
				if v, ok := w.Apply(value, present); ok {
					value, present = v, true
				}
			}
		}
		e := c.entry(s.key)
		e.value, e.present, e.stale = value, present, s.stale
		e.gen++
	}
}

func (p *Pending) rebase(key Key, value any, present bool) {
	for i := range p.snapshots {
		if p.snapshots[i].key == key {
			p.snapshots[i].value, p.snapshots[i].present = value, present
		}
	}
}
