// Package merge reconciles translations decoded from a spreadsheet with the
// layout of an existing resource file.
//
// The result is a Plan: an ordered list of actions a serializer walks to
// produce the new file. Keys that survive keep their original relative
// order, new keys are appended, and foreign (non-translatable or
// unrecognized) elements are re-inserted at their original slot.
package merge

import (
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

// SplitKey splits an array item key of the form "name,index".
// ok is false for scalar keys. The last comma separates the index, and the
// index must be a non-negative integer; anything else is a scalar key.
func SplitKey(key string) (name string, index int, ok bool) {
	i := strings.LastIndexByte(key, ',')
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return key[:i], n, true
}

// ItemKey builds the key of the index-th item of array name.
func ItemKey(name string, index int) string {
	return name + "," + strconv.Itoa(index)
}

// arrayName returns the array a key belongs to, or "" for scalar keys.
func arrayName(key string) string {
	name, _, ok := SplitKey(key)
	if !ok {
		return ""
	}
	return name
}

// ---------------------------------------------------------------------------
// Inputs
// ---------------------------------------------------------------------------

// Foreign is a top-level element of the original file that is not
// translated. Its payload is written back unchanged.
type Foreign struct {
	// Position is the element's ordinal among all top-level elements.
	Position int
	// Key is the element's name attribute, empty when it has none.
	Key string
	// Payload is the verbatim serialized element.
	Payload []byte
}

// Unit is one translation for one language.
type Unit struct {
	Key  string
	Text string
}

// ---------------------------------------------------------------------------
// Plan
// ---------------------------------------------------------------------------

// ActionKind identifies what a plan step emits.
type ActionKind int

const (
	// ActionForeign re-emits a foreign element verbatim.
	ActionForeign ActionKind = iota
	// ActionScalar emits a single string entry.
	ActionScalar
	// ActionOpenArray starts an array container.
	ActionOpenArray
	// ActionItem emits one item inside the open array container.
	ActionItem
	// ActionCloseArray ends the open array container.
	ActionCloseArray
)

func (k ActionKind) String() string {
	switch k {
	case ActionForeign:
		return "foreign"
	case ActionScalar:
		return "scalar"
	case ActionOpenArray:
		return "open-array"
	case ActionItem:
		return "item"
	case ActionCloseArray:
		return "close-array"
	}
	return "unknown"
}

// Action is a single step of a Plan.
type Action struct {
	Kind ActionKind
	// Key is the scalar key or the "name,index" item key.
	Key string
	// Name is the array name for array actions.
	Name string
	// Text is the translation for scalar and item actions.
	Text string
	// Foreign is set for ActionForeign.
	Foreign *Foreign
}

// Plan is the ordered emission sequence produced by Reconcile.
type Plan []Action

// Translatable returns the number of scalar and item actions.
func (p Plan) Translatable() int {
	n := 0
	for _, a := range p {
		if a.Kind == ActionScalar || a.Kind == ActionItem {
			n++
		}
	}
	return n
}

// Keys returns the emitted translation keys in plan order.
func (p Plan) Keys() []string {
	var keys []string
	for _, a := range p {
		if a.Kind == ActionScalar || a.Kind == ActionItem {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

// Layout describes the existing file for one language.
type Layout struct {
	// Order lists translatable keys in file order, arrays expanded to
	// item keys.
	Order []string
	// Slots holds, for each key in Order, the top-level element position
	// of the entry it belongs to. When nil it is derived from Order and
	// Foreign, assuming every other top-level element holds keys.
	Slots []int
	// Foreign lists the non-translatable elements.
	Foreign []Foreign
}

// slots returns the top-level position of every key in Order.
func (l Layout) slots() []int {
	if len(l.Slots) == len(l.Order) {
		return l.Slots
	}
	taken := make(map[int]bool, len(l.Foreign))
	for _, f := range l.Foreign {
		taken[f.Position] = true
	}
	out := make([]int, len(l.Order))
	slot, prevArray := -1, ""
	for i, k := range l.Order {
		name := arrayName(k)
		if name == "" || name != prevArray {
			slot++
			for taken[slot] {
				slot++
			}
		}
		prevArray = name
		out[i] = slot
	}
	return out
}

// ---------------------------------------------------------------------------
// Reconcile
// ---------------------------------------------------------------------------

// Reconcile computes the emission plan for one language.
//
// Surviving keys are emitted first, in the order of the existing layout,
// with foreign elements re-inserted before the first surviving key that
// followed them. Keys absent from the layout are appended afterwards in
// incoming order, and foreign elements that are still pending close the
// plan.
//
// Units with empty text are dropped, so blanking a cell removes the entry.
// When a key repeats in incoming, the last text wins and the first
// occurrence decides its place. Units whose key names a foreign element are
// ignored.
func Reconcile(layout Layout, incoming []Unit) Plan {
	units := normalize(incoming, layout.Foreign)
	existing, fresh := partition(layout, units)

	sorted := make([]Foreign, len(layout.Foreign))
	copy(sorted, layout.Foreign)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	r := &reconciler{foreign: sorted}
	r.run(existing, groupArrays(fresh))
	return r.plan
}

// normalize applies last-write-wins, drops empty texts and keys that
// collide with foreign elements.
func normalize(incoming []Unit, foreign []Foreign) []Unit {
	reserved := make(map[string]bool, len(foreign))
	for _, f := range foreign {
		if f.Key != "" {
			reserved[f.Key] = true
		}
	}

	index := make(map[string]int, len(incoming))
	var units []Unit
	for _, u := range incoming {
		if u.Key == "" || reserved[u.Key] || reserved[arrayName(u.Key)] {
			continue
		}
		if i, ok := index[u.Key]; ok {
			units[i].Text = u.Text
			continue
		}
		index[u.Key] = len(units)
		units = append(units, u)
	}

	out := units[:0]
	for _, u := range units {
		if u.Text != "" {
			out = append(out, u)
		}
	}
	return out
}

// placed is a surviving unit with its original top-level slot.
type placed struct {
	Unit
	slot  int
	order int // index in the layout order
	extra int // 0 for layout keys, 1 for items joining an existing array
	seq   int // input order among joining items
}

func (a placed) less(b placed) bool {
	if a.order != b.order {
		return a.order < b.order
	}
	if a.extra != b.extra {
		return a.extra < b.extra
	}
	return a.seq < b.seq
}

// partition splits units into those placed by the existing layout and
// those appended at the end. Items of an array already present in the
// layout join that array instead of opening a second container.
func partition(layout Layout, units []Unit) (existing []placed, fresh []Unit) {
	slots := layout.slots()
	pos := make(map[string]int, len(layout.Order))
	lastItem := make(map[string]int)
	for i, k := range layout.Order {
		if _, dup := pos[k]; !dup {
			pos[k] = i
		}
		if name := arrayName(k); name != "" {
			lastItem[name] = i
		}
	}

	for seq, u := range units {
		if i, ok := pos[u.Key]; ok {
			existing = append(existing, placed{Unit: u, slot: slots[i], order: i})
			continue
		}
		if name := arrayName(u.Key); name != "" {
			if i, ok := lastItem[name]; ok {
				existing = append(existing, placed{Unit: u, slot: slots[i], order: i, extra: 1, seq: seq})
				continue
			}
		}
		fresh = append(fresh, u)
	}

	sort.SliceStable(existing, func(i, j int) bool {
		return existing[i].less(existing[j])
	})
	return existing, fresh
}

// groupArrays makes the items of each new array contiguous, anchored at
// the first item's position. Item order within an array is kept as given.
func groupArrays(units []Unit) []Unit {
	var order []string
	groups := make(map[string][]Unit)
	for _, u := range units {
		name := arrayName(u.Key)
		slot := "\x00" + u.Key
		if name != "" {
			slot = name
		}
		if _, ok := groups[slot]; !ok {
			order = append(order, slot)
		}
		groups[slot] = append(groups[slot], u)
	}

	out := make([]Unit, 0, len(units))
	for _, slot := range order {
		out = append(out, groups[slot]...)
	}
	return out
}

// ---------------------------------------------------------------------------
// Emission state machine
// ---------------------------------------------------------------------------

type state int

const (
	stateDrainForeign state = iota
	stateEmitExisting
	stateEmitNew
	stateClosed
)

type reconciler struct {
	foreign []Foreign
	next    int    // first foreign element not yet emitted
	open    string // name of the open array, "" when none
	plan    Plan
}

func (r *reconciler) run(existing []placed, fresh []Unit) {
	st := stateEmitExisting
	for st != stateClosed {
		switch st {
		case stateDrainForeign:
			r.drainBefore(existing[0].slot)
			st = stateEmitExisting

		case stateEmitExisting:
			if len(existing) == 0 {
				r.closeArray()
				st = stateEmitNew
				continue
			}
			u := existing[0]
			if r.opensSlot(u.Key) && r.foreignDue(u.slot) {
				st = stateDrainForeign
				continue
			}
			existing = existing[1:]
			r.emit(u.Unit)

		case stateEmitNew:
			if len(fresh) == 0 {
				r.closeArray()
				r.drainAll()
				st = stateClosed
				continue
			}
			r.emit(fresh[0])
			fresh = fresh[1:]
		}
	}
}

// opensSlot reports whether emitting key starts a new top-level element.
func (r *reconciler) opensSlot(key string) bool {
	name := arrayName(key)
	return name == "" || name != r.open
}

// foreignDue reports whether the next foreign element originally came
// before the element at slot. Slots are original positions, so removed
// keys never shift a foreign element.
func (r *reconciler) foreignDue(slot int) bool {
	return r.next < len(r.foreign) && r.foreign[r.next].Position < slot
}

func (r *reconciler) drainBefore(slot int) {
	for r.foreignDue(slot) {
		r.emitForeign()
	}
}

func (r *reconciler) drainAll() {
	for r.next < len(r.foreign) {
		r.emitForeign()
	}
}

func (r *reconciler) emitForeign() {
	r.closeArray()
	f := &r.foreign[r.next]
	r.plan = append(r.plan, Action{Kind: ActionForeign, Key: f.Key, Foreign: f})
	r.next++
}

func (r *reconciler) emit(u Unit) {
	name, _, isItem := SplitKey(u.Key)
	if !isItem {
		r.closeArray()
		r.plan = append(r.plan, Action{Kind: ActionScalar, Key: u.Key, Text: u.Text})
		return
	}
	if name != r.open {
		r.closeArray()
		r.plan = append(r.plan, Action{Kind: ActionOpenArray, Name: name})
		r.open = name
	}
	r.plan = append(r.plan, Action{Kind: ActionItem, Key: u.Key, Name: name, Text: u.Text})
}

func (r *reconciler) closeArray() {
	if r.open == "" {
		return
	}
	r.plan = append(r.plan, Action{Kind: ActionCloseArray, Name: r.open})
	r.open = ""
}
