package cpu

// Bus is the memory surface the operand model and executor read and
// write through. internal/bus.Bus implements it; tests may supply a
// smaller fake.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, v byte)
}

// Operand is the uniform abstraction the instruction table closures are
// built from: a register, an immediate, or an indirect-memory access.
// cost/space are fixed per operand and computed once when the table is
// built, never recomputed per dispatch (spec.md design note: "Operand
// cost and space... centralize in per-operand metadata tables").
type Operand interface {
	Load(c *CPU) uint16
	Store(c *CPU, v uint16)
	Cost() int
	Space() int
	IsWord() bool
	String() string
}

// regOperand reads/writes an 8-bit register directly.
type regOperand struct {
	reg  Reg8
	name string
}

func Reg(r Reg8, name string) Operand { return regOperand{reg: r, name: name} }

func (o regOperand) Load(c *CPU) uint16    { return uint16(c.Regs.Get8(o.reg)) }
func (o regOperand) Store(c *CPU, v uint16) { c.Regs.Set8(o.reg, byte(v)) }
func (o regOperand) Cost() int             { return 0 }
func (o regOperand) Space() int            { return 0 }
func (o regOperand) IsWord() bool          { return false }
func (o regOperand) String() string        { return o.name }

// reg16Operand reads/writes a 16-bit register pair.
type reg16Operand struct {
	reg  Reg16
	name string
}

func RegPair(r Reg16, name string) Operand { return reg16Operand{reg: r, name: name} }

func (o reg16Operand) Load(c *CPU) uint16    { return c.Regs.Get16(o.reg) }
func (o reg16Operand) Store(c *CPU, v uint16) { c.Regs.Set16(o.reg, v) }
func (o reg16Operand) Cost() int             { return 0 }
func (o reg16Operand) Space() int            { return 0 }
func (o reg16Operand) IsWord() bool          { return true }
func (o reg16Operand) String() string        { return o.name }

// incRegOperand reads a 16-bit register pair then post-adjusts it by
// delta (+1/-1), used for the HLI/HLD addressing modes. Loading returns
// the pre-adjustment value; the register itself always holds the
// post-adjustment value once Load has run.
type incRegOperand struct {
	reg   Reg16
	delta int16
	name  string
}

func IncReg(r Reg16, delta int16, name string) Operand {
	return incRegOperand{reg: r, delta: delta, name: name}
}

func (o incRegOperand) Load(c *CPU) uint16 {
	v := c.Regs.Get16(o.reg)
	c.Regs.Set16(o.reg, uint16(int32(v)+int32(o.delta)))
	return v
}
func (o incRegOperand) Store(c *CPU, v uint16) {
	// Only ever used as an address source (Mem's ptr); storing directly
	// to it would be meaningless and is never generated by the table
	// builder.
}
func (o incRegOperand) Cost() int      { return 0 }
func (o incRegOperand) Space() int     { return 0 }
func (o incRegOperand) IsWord() bool   { return false }
func (o incRegOperand) String() string { return o.name }

// immOperand reads an immediate 8- or 16-bit value from pc+1 (little
// endian for 16-bit). Store is undefined for immediates.
type immOperand struct {
	word bool
}

func Imm8() Operand  { return immOperand{word: false} }
func Imm16() Operand { return immOperand{word: true} }

func (o immOperand) Load(c *CPU) uint16 {
	if o.word {
		return c.ReadWord(c.Regs.PC + 1)
	}
	return uint16(c.bus.Read(c.Regs.PC + 1))
}
func (o immOperand) Store(c *CPU, v uint16) {}
func (o immOperand) Cost() int {
	if o.word {
		return 8
	}
	return 4
}
func (o immOperand) Space() int {
	if o.word {
		return 2
	}
	return 1
}
func (o immOperand) IsWord() bool { return o.word }
func (o immOperand) String() string {
	if o.word {
		return "d16"
	}
	return "d8"
}

// memOperand dereferences ptr.Load(c)+offset through the bus, reading
// or writing 1 or 2 bytes depending on dword.
type memOperand struct {
	ptr    Operand
	offset uint16
	dword  bool
	name   string
}

// Mem builds an indirect-memory operand: effective address =
// ptr.Load(ctx) + offset.
func Mem(ptr Operand, offset uint16, dword bool, name string) Operand {
	return memOperand{ptr: ptr, offset: offset, dword: dword, name: name}
}

func (o memOperand) addr(c *CPU) uint16 { return o.ptr.Load(c) + o.offset }

func (o memOperand) Load(c *CPU) uint16 {
	addr := o.addr(c)
	if o.dword {
		return c.ReadWord(addr)
	}
	return uint16(c.bus.Read(addr))
}

func (o memOperand) Store(c *CPU, v uint16) {
	addr := o.addr(c)
	if o.dword {
		c.WriteWord(addr, v)
		return
	}
	c.bus.Write(addr, byte(v))
}

func (o memOperand) Cost() int {
	base := 4 + o.ptr.Cost()
	if o.dword {
		return 8
	}
	return base
}
func (o memOperand) Space() int  { return o.ptr.Space() }
func (o memOperand) IsWord() bool { return o.dword }
func (o memOperand) String() string {
	if o.name != "" {
		return o.name
	}
	return "(mem)"
}

// Common composites used throughout the instruction table.
var (
	operandB = Reg(RegB, "B")
	operandC = Reg(RegC, "C")
	operandD = Reg(RegD, "D")
	operandE = Reg(RegE, "E")
	operandH = Reg(RegH, "H")
	operandL = Reg(RegL, "L")
	operandA = Reg(RegA, "A")

	operandBC = RegPair(RegBC, "BC")
	operandDE = RegPair(RegDE, "DE")
	operandHL = RegPair(RegHL, "HL")
	operandSP = RegPair(RegSP, "SP")

	operandIndHL = Mem(operandHL, 0, false, "(HL)")
	operandIndBC = Mem(operandBC, 0, false, "(BC)")
	operandIndDE = Mem(operandDE, 0, false, "(DE)")

	operandHLI = Mem(IncReg(RegHL, 1, "HL+"), 0, false, "(HL+)")
	operandHLD = Mem(IncReg(RegHL, -1, "HL-"), 0, false, "(HL-)")

	operandImm8  = Imm8()
	operandImm16 = Imm16()

	// LDH (FF00+n),A / A,(FF00+n)
	operandHighImm = Mem(operandImm8, 0xFF00, false, "(FF00+n)")
	// LD (FF00+C),A / A,(FF00+C)
	operandHighC = Mem(operandC, 0xFF00, false, "(FF00+C)")

	operandStack = Mem(operandSP, 0, true, "(SP)")

	// regByIndex maps the 3-bit register field used by LD r,r' and the
	// CB-prefixed table to an 8-bit operand; index 6 is (HL).
	regByIndex = [8]Operand{operandB, operandC, operandD, operandE, operandH, operandL, operandIndHL, operandA}
)
