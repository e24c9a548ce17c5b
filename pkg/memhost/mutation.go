package memhost

// MutationOp is the kind of change recorded in the journal.
type MutationOp string

const (
	OpInsert  MutationOp = "insert"
	OpRemove  MutationOp = "remove"
	OpSetAttr MutationOp = "attr"
	OpListen  MutationOp = "listen"
)

// Mutation is one recorded host edit.
type Mutation struct {
	Op     MutationOp `json:"op"`
	Target int        `json:"target"`
	Parent int        `json:"parent,omitempty"`
	Index  int        `json:"index,omitempty"`
	Name   string     `json:"name,omitempty"`
	Value  string     `json:"value,omitempty"`
}

func (d *Document) record(m Mutation) {
	d.mu.Lock()
	d.journal = append(d.journal, m)
	d.count++
	subs := make([]func(Mutation), 0, len(d.subscribers))
	for _, fn := range d.subscribers {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn(m)
	}
}

// MutationCount returns the number of mutations recorded since creation or
// the last ResetMutations.
func (d *Document) MutationCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Mutations returns a copy of the journal.
func (d *Document) Mutations() []Mutation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Mutation, len(d.journal))
	copy(out, d.journal)
	return out
}

// ResetMutations clears the journal and the counter.
func (d *Document) ResetMutations() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal = nil
	d.count = 0
}

// Subscribe registers fn to be called after every mutation. The returned
// function removes the subscription.
func (d *Document) Subscribe(fn func(Mutation)) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subscribers[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subscribers, id)
		d.mu.Unlock()
	}
}
