// Package image serializes a resolved vm.Program to and from a
// compact little-endian binary form so assembled programs can be
// written to disk and run later without re-parsing source.
package image

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/WillemNicolas/vulkyn/vm"
	"github.com/WillemNicolas/vulkyn/word"
)

// Magic identifies a vulkyn program image; Version lets a future
// format change refuse to load an image it can't interpret.
const (
	Magic   uint32 = 0x564b594e // "VKYN"
	Version uint16 = 1
)

// EncodingError reports a failure to encode or decode a program
// image, naming the instruction index at fault when one is known.
type EncodingError struct {
	Index   int // -1 when not instruction-specific
	Message string
	Wrapped error
}

func (e *EncodingError) Error() string {
	if e.Index < 0 {
		if e.Wrapped != nil {
			return fmt.Sprintf("image: %s: %v", e.Message, e.Wrapped)
		}
		return fmt.Sprintf("image: %s", e.Message)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("image: instruction %d: %s: %v", e.Index, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("image: instruction %d: %s", e.Index, e.Message)
}

func (e *EncodingError) Unwrap() error { return e.Wrapped }

// Encode serializes prog into the binary image format.
func Encode(prog *vm.Program) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, Magic); err != nil {
		return nil, &EncodingError{Index: -1, Message: "writing magic", Wrapped: err}
	}
	if err := binary.Write(&buf, binary.LittleEndian, Version); err != nil {
		return nil, &EncodingError{Index: -1, Message: "writing version", Wrapped: err}
	}
	count := uint32(len(prog.Instructions))
	if err := binary.Write(&buf, binary.LittleEndian, count); err != nil {
		return nil, &EncodingError{Index: -1, Message: "writing instruction count", Wrapped: err}
	}
	for i, instr := range prog.Instructions {
		if err := encodeInstruction(&buf, instr); err != nil {
			return nil, &EncodingError{Index: i, Message: "encoding instruction", Wrapped: err}
		}
	}
	return buf.Bytes(), nil
}

// Decode parses a binary image back into a vm.Program. It is the
// exact inverse of Encode: decode(encode(p)) == p for any p whose
// Size, Offset and Target fields fit in 32 bits (Encode stores them
// as int32).
func Decode(data []byte) (*vm.Program, error) {
	r := bytes.NewReader(data)

	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, &EncodingError{Index: -1, Message: "reading magic", Wrapped: err}
	}
	if magic != Magic {
		return nil, &EncodingError{Index: -1, Message: fmt.Sprintf("bad magic %#x", magic)}
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, &EncodingError{Index: -1, Message: "reading version", Wrapped: err}
	}
	if version != Version {
		return nil, &EncodingError{Index: -1, Message: fmt.Sprintf("unsupported image version %d", version)}
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, &EncodingError{Index: -1, Message: "reading instruction count", Wrapped: err}
	}

	instrs := make([]vm.Instruction, count)
	for i := range instrs {
		instr, err := decodeInstruction(r)
		if err != nil {
			return nil, &EncodingError{Index: i, Message: "decoding instruction", Wrapped: err}
		}
		instrs[i] = instr
	}
	return &vm.Program{Instructions: instrs}, nil
}

func encodeInstruction(w io.Writer, instr vm.Instruction) error {
	if err := writeString(w, string(instr.Op)); err != nil {
		return err
	}
	if err := encodeWord(w, instr.Literal); err != nil {
		return err
	}
	for _, reg := range []vm.Register{instr.Reg, instr.Reg2, instr.Addr.Reg} {
		if err := binary.Write(w, binary.LittleEndian, uint8(reg)); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, instr.Addr.Offset); err != nil {
		return err
	}
	for _, e := range []vm.Either{instr.Either1, instr.Either2} {
		if err := encodeEither(w, e); err != nil {
			return err
		}
	}
	for _, n := range []int{instr.Size, instr.Offset, instr.Target} {
		if err := binary.Write(w, binary.LittleEndian, int32(n)); err != nil {
			return err
		}
	}
	return nil
}

func decodeInstruction(r io.Reader) (vm.Instruction, error) {
	var instr vm.Instruction

	op, err := readString(r)
	if err != nil {
		return instr, err
	}
	instr.Op = vm.Opcode(op)

	instr.Literal, err = decodeWord(r)
	if err != nil {
		return instr, err
	}

	regs := make([]uint8, 3)
	for i := range regs {
		if err := binary.Read(r, binary.LittleEndian, &regs[i]); err != nil {
			return instr, err
		}
	}
	instr.Reg = vm.Register(regs[0])
	instr.Reg2 = vm.Register(regs[1])
	instr.Addr.Reg = vm.Register(regs[2])

	if err := binary.Read(r, binary.LittleEndian, &instr.Addr.Offset); err != nil {
		return instr, err
	}

	instr.Either1, err = decodeEither(r)
	if err != nil {
		return instr, err
	}
	instr.Either2, err = decodeEither(r)
	if err != nil {
		return instr, err
	}

	ints := make([]int32, 3)
	for i := range ints {
		if err := binary.Read(r, binary.LittleEndian, &ints[i]); err != nil {
			return instr, err
		}
	}
	instr.Size = int(ints[0])
	instr.Offset = int(ints[1])
	instr.Target = int(ints[2])

	return instr, nil
}

func encodeEither(w io.Writer, e vm.Either) error {
	isReg := uint8(0)
	if e.IsReg {
		isReg = 1
	}
	if err := binary.Write(w, binary.LittleEndian, isReg); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(e.Reg)); err != nil {
		return err
	}
	return encodeWord(w, e.Word)
}

func decodeEither(r io.Reader) (vm.Either, error) {
	var e vm.Either
	var isReg, reg uint8
	if err := binary.Read(r, binary.LittleEndian, &isReg); err != nil {
		return e, err
	}
	if err := binary.Read(r, binary.LittleEndian, &reg); err != nil {
		return e, err
	}
	e.IsReg = isReg != 0
	e.Reg = vm.Register(reg)
	w, err := decodeWord(r)
	if err != nil {
		return e, err
	}
	e.Word = w
	return e, nil
}

// encodeWord writes a tag byte followed by an 8-byte little-endian
// payload. Tags are 1-byte discriminants per §4.6; Char's codepoint
// occupies the low 4 bytes of the payload, zero-extended.
func encodeWord(w io.Writer, v word.Word) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(v.Tag)); err != nil {
		return err
	}
	var payload uint64
	switch v.Tag {
	case word.TagU64:
		payload = v.AsU64()
	case word.TagI64:
		payload = uint64(v.AsInt())
	case word.TagF64:
		payload = math.Float64bits(v.AsF64())
	case word.TagChar:
		payload = uint64(uint32(v.AsChar()))
	case word.TagBool:
		if v.AsBool() {
			payload = 1
		}
	}
	return binary.Write(w, binary.LittleEndian, payload)
}

func decodeWord(r io.Reader) (word.Word, error) {
	var tag uint8
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return word.Word{}, err
	}
	var payload uint64
	if err := binary.Read(r, binary.LittleEndian, &payload); err != nil {
		return word.Word{}, err
	}
	switch word.Tag(tag) {
	case word.TagU64:
		return word.U64(payload), nil
	case word.TagI64:
		return word.I64(int64(payload)), nil
	case word.TagF64:
		return word.F64(math.Float64frombits(payload)), nil
	case word.TagChar:
		return word.Char(rune(uint32(payload))), nil
	case word.TagBool:
		return word.Bool(payload != 0), nil
	default:
		return word.Word{}, fmt.Errorf("unknown word tag %d", tag)
	}
}

func writeString(w io.Writer, s string) error {
	if len(s) > 255 {
		return fmt.Errorf("opcode mnemonic %q exceeds 255 bytes", s)
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint8
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
