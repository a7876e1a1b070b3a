package core

import (
	"fmt"
	"sort"
)

// =============================================================================
// Consumer
// =============================================================================

// ConsumerKind is the type of input a consumer takes.
type ConsumerKind int

// Consumer kinds.
const (
	// LiteralConsumer takes a plain token.
	LiteralConsumer ConsumerKind = iota
	// TableOrColumnConsumer takes a token after table.column resolution.
	TableOrColumnConsumer
	// CommandConsumer takes the executed result of a nested command.
	CommandConsumer
)

// String returns the string representation of the consumer kind.
func (k ConsumerKind) String() string {
	switch k {
	case LiteralConsumer:
		return "literal"
	case TableOrColumnConsumer:
		return "table-or-column"
	case CommandConsumer:
		return "command"
	default:
		return "unknown"
	}
}

// Consumer is a typed sink bound to one argument slot.
type Consumer struct {
	kind      ConsumerKind
	slot      int
	single    bool
	mandatory bool
	consumed  bool
	accept    []Kind

	onLiteral func(string) error
	onCommand func(Command) error
}

// Single makes the consumer take one value, after which the machine
// advances to the next slot.
func (c *Consumer) Single() *Consumer {
	c.single = true
	return c
}

// Mandatory requires the consumer to take a value before the command closes.
func (c *Consumer) Mandatory() *Consumer {
	c.mandatory = true
	return c
}

// Accept restricts the command kinds a command consumer takes.
// An empty allow-list accepts any kind.
func (c *Consumer) Accept(kinds ...Kind) *Consumer {
	c.accept = append(c.accept, kinds...)
	return c
}

// Kind returns the consumer kind.
func (c *Consumer) Kind() ConsumerKind { return c.kind }

// Slot returns the slot the consumer is bound to.
func (c *Consumer) Slot() int { return c.slot }

// Consumed reports whether the consumer took at least one value.
func (c *Consumer) Consumed() bool { return c.consumed }

// IsSingle reports whether the consumer takes a single value.
func (c *Consumer) IsSingle() bool { return c.single }

// IsMandatory reports whether the consumer must take a value.
func (c *Consumer) IsMandatory() bool { return c.mandatory }

func (c *Consumer) accepts(k Kind) bool {
	if len(c.accept) == 0 {
		return true
	}
	for _, a := range c.accept {
		if a == k {
			return true
		}
	}
	return false
}

// =============================================================================
// Machine
// =============================================================================

type slotConsumers struct {
	literal *Consumer
	command *Consumer
}

// Transition is one edge of a machine: input of the given consumer kind at
// slot From moves the machine to slot To.
type Transition struct {
	From  int
	Input ConsumerKind
	To    int
}

// Machine is the argument slot state machine of one command instance.
// States are slot numbers starting at 0; the default transition of a
// single-value consumer is the next slot, a repeating consumer stays, and
// a registered jump overrides both.
type Machine struct {
	owner      string
	slots      map[int]*slotConsumers
	jumps      map[*Consumer]int
	slot       int
	fed        int
	allowEmpty bool
}

// NewMachine creates an empty machine for the named command.
func NewMachine(owner string) *Machine {
	return &Machine{
		owner: owner,
		slots: make(map[int]*slotConsumers),
		jumps: make(map[*Consumer]int),
	}
}

// Literal declares a plain token consumer at slot.
func (m *Machine) Literal(slot int, fn func(string) error) *Consumer {
	return m.add(&Consumer{kind: LiteralConsumer, slot: slot, onLiteral: fn})
}

// TableOrColumn declares a consumer at slot whose tokens are resolved from
// table.column to alias.column before they arrive.
func (m *Machine) TableOrColumn(slot int, fn func(string) error) *Consumer {
	return m.add(&Consumer{kind: TableOrColumnConsumer, slot: slot, onLiteral: fn})
}

// Command declares a nested command consumer at slot.
func (m *Machine) Command(slot int, fn func(Command) error) *Consumer {
	return m.add(&Consumer{kind: CommandConsumer, slot: slot, onCommand: fn})
}

// add binds c to its slot. A slot holds at most one literal-type and one
// command consumer; anything else is a programming error.
func (m *Machine) add(c *Consumer) *Consumer {
	s := m.slots[c.slot]
	if s == nil {
		s = &slotConsumers{}
		m.slots[c.slot] = s
	}

	if c.kind == CommandConsumer {
		if s.command != nil {
			panic(fmt.Sprintf("core: %s: slot %d already has a command consumer", m.owner, c.slot))
		}
		s.command = c
		return c
	}

	if s.literal != nil {
		panic(fmt.Sprintf("core: %s: slot %d already has a literal consumer", m.owner, c.slot))
	}
	s.literal = c
	return c
}

// Jump makes the machine move to slot after c takes a value.
func (m *Machine) Jump(c *Consumer, slot int) {
	m.jumps[c] = slot
}

// PermitEmpty lets the command close without any argument.
func (m *Machine) PermitEmpty() {
	m.allowEmpty = true
}

// AllowsEmpty reports whether the command may close without arguments.
func (m *Machine) AllowsEmpty() bool { return m.allowEmpty }

// Empty reports whether no argument has been fed yet.
func (m *Machine) Empty() bool { return m.fed == 0 }

// Slot returns the current slot.
func (m *Machine) Slot() int { return m.slot }

// Finished reports whether no consumer exists at the current slot.
func (m *Machine) Finished() bool {
	return m.slots[m.slot] == nil
}

// ExpectsTableOrColumn reports whether the current slot resolves
// table.column tokens.
func (m *Machine) ExpectsTableOrColumn() bool {
	s := m.slots[m.slot]
	return s != nil && s.literal != nil && s.literal.kind == TableOrColumnConsumer
}

// CanClose reports whether every mandatory consumer at the current slot
// has taken a value.
func (m *Machine) CanClose() bool {
	s := m.slots[m.slot]
	if s == nil {
		return true
	}
	for _, c := range []*Consumer{s.literal, s.command} {
		if c != nil && c.mandatory && !c.consumed {
			return false
		}
	}
	return true
}

// Admit checks that a command of the given name and kind may be fed at the
// current slot, without feeding it.
func (m *Machine) Admit(name string, kind Kind) error {
	s := m.slots[m.slot]
	if s == nil {
		return Errorf(ArgumentCount, ErrTooManyArguments)
	}
	if s.command == nil || !s.command.accepts(kind) {
		return Errorf(UnexpectedArgument, ErrCannotUseCommand, name, m.owner)
	}
	return nil
}

// FeedLiteral feeds a token to the current slot.
func (m *Machine) FeedLiteral(v string) error {
	s := m.slots[m.slot]
	if s == nil {
		return Errorf(ArgumentCount, ErrTooManyArguments)
	}
	if s.literal == nil {
		return Errorf(UnexpectedArgument, ErrExpectedCommand, v)
	}

	c := s.literal
	c.consumed = true
	m.fed++
	if c.onLiteral != nil {
		if err := c.onLiteral(v); err != nil {
			return err
		}
	}
	m.advance(c)
	return nil
}

// FeedCommand feeds an executed nested command to the current slot.
func (m *Machine) FeedCommand(cmd Command) error {
	if err := m.Admit(cmd.Name(), cmd.Kind()); err != nil {
		return err
	}

	c := m.slots[m.slot].command
	c.consumed = true
	m.fed++
	if c.onCommand != nil {
		if err := c.onCommand(cmd); err != nil {
			return err
		}
	}
	m.advance(c)
	return nil
}

func (m *Machine) advance(c *Consumer) {
	if next, ok := m.jumps[c]; ok {
		m.slot = next
		return
	}
	if c.single {
		m.slot++
	}
}

// Transitions returns the transition table, ordered by slot and input kind.
func (m *Machine) Transitions() []Transition {
	var out []Transition
	for slot, s := range m.slots {
		for _, c := range []*Consumer{s.literal, s.command} {
			if c == nil {
				continue
			}
			to := slot
			if c.single {
				to = slot + 1
			}
			if next, ok := m.jumps[c]; ok {
				to = next
			}
			out = append(out, Transition{From: slot, Input: c.kind, To: to})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].Input < out[j].Input
	})
	return out
}
