package prefix

import (
	"fmt"
	"sort"

	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/buffer"
	"github.com/dshills/xedit/internal/engine/history"
	"github.com/dshills/xedit/internal/xerr"
)

// Priority classes.
const (
	classBlock = iota
	classSingle
	classMarker
)

// Result describes an applied batch.
type Result struct {
	Applied int // Operations executed
	Current int // Current line afterwards
}

// op is one validated operation. Addresses are those captured at
// validation time.
type op struct {
	verb       Verb
	class      int
	start, end int
	startID    buffer.LineID
	endID      buffer.LineID
	count      int
	dest       *Pending // Destination of a copy or move
	destID     buffer.LineID
}

func (o op) String() string {
	if o.start == o.end {
		return fmt.Sprintf("%s on line %d", o.verb, o.start)
	}
	return fmt.Sprintf("%s on lines %d-%d", o.verb, o.start, o.end)
}

// blockKinds fixes the pairing order of block markers.
var blockKinds = []Verb{DeleteBlock, DupBlock, CopyBlock, MoveBlock, ShiftRightBlock, ShiftLeftBlock}

// Commit validates the pending batch and applies it to e as one undo
// transaction. The batch is empty afterwards whether or not it applied.
// Validation errors wrap xerr.ErrBadSyntax or xerr.ErrConflictingPrefix
// and leave the file untouched. A failure while applying rolls back every
// operation of the batch.
func (b *Batch) Commit(e *engine.Engine) (Result, error) {
	b.committing = true
	defer func() {
		b.committing = false
		b.entries = nil
	}()

	buf := e.Buffer()
	ops, err := b.plan(buf)
	if err != nil {
		return Result{Current: e.Current()}, err
	}
	if len(ops) == 0 {
		return Result{Current: e.Current()}, nil
	}

	x := &executor{e: e, buf: buf}
	err = e.Change("prefix", func() error {
		for _, o := range ops {
			if err := x.run(o); err != nil {
				return fmt.Errorf("%s: %w", o, err)
			}
		}
		return nil
	})
	if err != nil {
		return Result{Current: e.Current()}, err
	}
	return Result{Applied: len(ops), Current: e.Current()}, nil
}

// plan validates the batch and returns its operations in execution order.
func (b *Batch) plan(buf *buffer.Buffer) ([]op, error) {
	pending := b.Pending(buf)

	var (
		ops     []op
		dests   []Pending
		markers []Pending
		blocks  = make(map[Verb][]Pending)
	)
	last := buf.LineCount()
	for _, p := range pending {
		if verbs[p.Verb].counted && p.Count < 1 {
			return nil, xerr.Syntax("count must be positive in %q", p.Text)
		}
		switch {
		case p.Verb.IsBlock():
			blocks[p.Verb] = append(blocks[p.Verb], p)
		case p.Verb.isDest():
			dests = append(dests, p)
		case p.Verb == SetCurrent:
			markers = append(markers, p)
		default:
			o := op{verb: p.Verb, class: classSingle, start: p.Addr, end: p.Addr, count: p.Count}
			switch p.Verb {
			case Delete, Copy, Move:
				o.end = min(p.Addr+p.Count-1, last)
			}
			if p.Verb.isSource() {
				o.class = classBlock
			}
			ops = append(ops, o)
		}
	}

	for _, kind := range blockKinds {
		marks := blocks[kind]
		if len(marks)%2 != 0 {
			return nil, fmt.Errorf("unpaired %s on line %d: %w", kind, marks[len(marks)-1].Addr, xerr.ErrConflictingPrefix)
		}
		for i := 0; i < len(marks); i += 2 {
			first, second := marks[i], marks[i+1]
			ops = append(ops, op{
				verb:  kind,
				class: classBlock,
				start: first.Addr,
				end:   second.Addr,
				count: max(first.Count, second.Count),
			})
		}
	}

	if len(markers) > 1 {
		return nil, fmt.Errorf("%d current-line markers: %w", len(markers), xerr.ErrConflictingPrefix)
	}

	if err := attachDest(ops, dests); err != nil {
		return nil, err
	}
	if err := checkOverlap(ops, dests, markers, buf); err != nil {
		return nil, err
	}

	for _, m := range markers {
		ops = append(ops, op{verb: SetCurrent, class: classMarker, start: m.Addr, end: m.Addr})
	}
	for i := range ops {
		ops[i].startID, _ = buf.ID(ops[i].start)
		ops[i].endID, _ = buf.ID(ops[i].end)
		if ops[i].dest != nil {
			ops[i].destID, _ = buf.ID(ops[i].dest.Addr)
		}
	}
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].class != ops[j].class {
			return ops[i].class < ops[j].class
		}
		return ops[i].start < ops[j].start
	})
	return ops, nil
}

// attachDest pairs the single copy or move source with its f or p marker.
func attachDest(ops []op, dests []Pending) error {
	src := -1
	for i := range ops {
		if !ops[i].verb.isSource() {
			continue
		}
		if src >= 0 {
			return fmt.Errorf("%s and %s: %w", ops[src], ops[i], xerr.ErrConflictingPrefix)
		}
		src = i
	}
	switch {
	case src < 0 && len(dests) > 0:
		return fmt.Errorf("%s on line %d without a copy or move: %w", dests[0].Verb, dests[0].Addr, xerr.ErrConflictingPrefix)
	case src < 0:
		return nil
	case len(dests) == 0:
		return fmt.Errorf("%s needs f or p: %w", ops[src], xerr.ErrConflictingPrefix)
	case len(dests) > 1:
		return fmt.Errorf("%d destinations for %s: %w", len(dests), ops[src], xerr.ErrConflictingPrefix)
	}
	d := dests[0]
	ops[src].dest = &d
	return nil
}

type span struct {
	start, end int
	what       string
	deletes    bool
}

func (s span) contains(addr int) bool {
	return addr >= s.start && addr <= s.end
}

func (s span) overlaps(o span) bool {
	return s.start <= o.end && o.start <= s.end
}

func conflict(a, b span) error {
	return fmt.Errorf("%s overlaps %s: %w", a.what, b.what, xerr.ErrConflictingPrefix)
}

// checkOverlap rejects batches that cannot apply as a whole. Block ranges
// may not overlap each other, nor may the ranges of single operations. A
// single operation may sit inside a block unless the block deletes it or
// the single range crosses the block's edge. No marker or destination may
// sit on a line that is deleted, and a move may not land inside itself.
func checkOverlap(ops []op, dests, markers []Pending, buf *buffer.Buffer) error {
	var blocks, singles []span
	for _, o := range ops {
		if !buf.IsLine(o.start) {
			continue
		}
		s := span{o.start, o.end, o.String(), o.verb == Delete || o.verb == DeleteBlock}
		if o.class == classBlock {
			blocks = append(blocks, s)
		} else {
			singles = append(singles, s)
		}
	}

	for i, a := range blocks {
		for _, b := range blocks[i+1:] {
			if a.overlaps(b) {
				return conflict(b, a)
			}
		}
	}
	for i, a := range singles {
		for _, b := range singles[i+1:] {
			if a.overlaps(b) {
				return conflict(b, a)
			}
		}
		for _, b := range blocks {
			if a.overlaps(b) && (b.deletes || a.start < b.start || a.end > b.end) {
				return conflict(a, b)
			}
		}
	}

	all := append(append([]span(nil), blocks...), singles...)
	for _, p := range append(append([]Pending(nil), dests...), markers...) {
		if !buf.IsLine(p.Addr) {
			continue
		}
		at := span{p.Addr, p.Addr, fmt.Sprintf("%s on line %d", p.Verb, p.Addr), false}
		for _, b := range all {
			if b.deletes && b.contains(p.Addr) {
				return conflict(at, b)
			}
		}
	}

	for _, o := range ops {
		if o.dest == nil || (o.verb != Move && o.verb != MoveBlock) {
			continue
		}
		anchor := o.dest.Addr
		if o.dest.Verb == Preceding {
			anchor--
		}
		if anchor >= o.start && anchor < o.end {
			return fmt.Errorf("%s on line %d is inside %s: %w", o.dest.Verb, o.dest.Addr, o, xerr.ErrConflictingPrefix)
		}
	}
	return nil
}

// edit is a structural change recorded for address translation: n lines
// inserted after at, or n lines deleted starting at at.
type edit struct {
	at, n int
	del   bool
}

type executor struct {
	e     *engine.Engine
	buf   *buffer.Buffer
	edits []edit
}

func (x *executor) inserted(after, n int) {
	x.edits = append(x.edits, edit{at: after, n: n})
}

func (x *executor) deleted(start, end int) {
	x.edits = append(x.edits, edit{at: start, n: end - start + 1, del: true})
}

// translate maps a captured address through the edits applied so far.
func (x *executor) translate(addr int) (int, bool) {
	for _, ed := range x.edits {
		switch {
		case !ed.del && addr > ed.at:
			addr += ed.n
		case ed.del && addr >= ed.at+ed.n:
			addr -= ed.n
		case ed.del && addr >= ed.at:
			return 0, false
		}
	}
	return addr, true
}

// addr translates a captured address and checks that it still names the
// captured line. A line that moved is found by its identity.
func (x *executor) addr(captured int, id buffer.LineID) (int, error) {
	a, ok := x.translate(captured)
	if ok && id == 0 {
		return a, nil
	}
	if ok {
		if got, _ := x.buf.ID(a); got == id {
			return a, nil
		}
	}
	if id != 0 {
		if found, exists := x.buf.Find(id); exists {
			return found, nil
		}
	}
	if !ok {
		return 0, fmt.Errorf("line %d was deleted: %w", captured, xerr.ErrOutOfRange)
	}
	return 0, fmt.Errorf("line %d lost track at %d: %w", captured, a, xerr.ErrOutOfRange)
}

func (x *executor) block(o op) (int, int, error) {
	start, err := x.addr(o.start, o.startID)
	if err != nil {
		return 0, 0, err
	}
	end, err := x.addr(o.end, o.endID)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (x *executor) run(o op) error {
	switch o.verb {
	case SetCurrent:
		a, err := x.addr(o.start, o.startID)
		if err != nil {
			return err
		}
		return x.e.SetCurrent(a)

	case Insert, Add:
		a, err := x.addr(o.start, o.startID)
		if err != nil {
			return err
		}
		cmd := history.NewInsertCommand(a, make([]string, o.count)...)
		if err := x.e.Apply(cmd); err != nil {
			return err
		}
		x.inserted(cmd.At()-1, o.count)
		return nil
	}

	start, end, err := x.block(o)
	if err != nil {
		return err
	}
	switch o.verb {
	case Delete, DeleteBlock:
		if err := x.e.Apply(history.NewDeleteCommand(start, end)); err != nil {
			return err
		}
		x.deleted(start, end)

	case Dup, DupBlock:
		for i := 0; i < o.count; i++ {
			if err := x.e.Apply(history.NewCopyCommand(start, end, end)); err != nil {
				return err
			}
			x.inserted(end, end-start+1)
		}

	case Copy, CopyBlock, Move, MoveBlock:
		return x.transfer(o, start, end)

	case ShiftRight, ShiftLeft, ShiftRightBlock, ShiftLeftBlock:
		left := o.verb == ShiftLeft || o.verb == ShiftLeftBlock
		trunc := x.e.Settings().Trunc
		for a := start; a <= end; a++ {
			text := engine.Shift(x.buf.Text(a), o.count, left, trunc)
			if err := x.e.Apply(history.NewReplaceCommand(a, text)); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("unexpected prefix verb %s: %w", o.verb, xerr.ErrBadSyntax)
	}
	return nil
}

// transfer copies or moves start..end after the destination marker.
func (x *executor) transfer(o op, start, end int) error {
	dest, err := x.addr(o.dest.Addr, o.destID)
	if err != nil {
		return err
	}
	anchor := dest
	if o.dest.Verb == Preceding {
		anchor--
	}
	size := end - start + 1

	if o.verb == Copy || o.verb == CopyBlock {
		cmd := history.NewCopyCommand(start, end, anchor)
		if err := x.e.Apply(cmd); err != nil {
			return err
		}
		x.inserted(cmd.At()-1, size)
		return nil
	}

	if err := x.e.Apply(history.NewMoveCommand(start, end, anchor)); err != nil {
		return err
	}
	if anchor == end || anchor == start-1 {
		return nil
	}
	x.deleted(start, end)
	if anchor > end {
		anchor -= size
	}
	x.inserted(anchor, size)
	return nil
}
