package cpu

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"

	"go.starlark.net/starlark"

	"github.com/ezrec/evilvm/cell"
)

// Assembler is a two-pass translator from Evil VM assembly source to a
// Program image (section 4.8). Pass one walks the source once, resolving
// labels to byte offsets and evaluating NAME = expr equates as it goes
// (both only ever reference symbols already seen); pass two emits the
// actual cells, now that the whole symbol table is known.
type Assembler struct {
	Width   cell.Width
	Verbose bool
}

// NewAssembler builds an assembler for the given cell/word/address
// geometry; instruction lengths depend on it, so it must be fixed before
// assembly starts (section 4.8).
func NewAssembler(width cell.Width) *Assembler {
	return &Assembler{Width: width}
}

type lineKind int

const (
	lnEmpty lineKind = iota
	lnEquate
	lnDirective
	lnInstr
)

type parsedLine struct {
	lineNo int
	raw    string
	labels []string
	kind   lineKind
	name   string   // mnemonic, directive name, or equate name
	expr   string   // equate expression text
	args   []string // operand tokens or directive arguments
	key    string   // resolved instruction-table key, filled in pass 1
}

var charLiteralRe = regexp.MustCompile(`'\\?[^']'`)
var numericLiteralRe = regexp.MustCompile(`\b0[xXbB][0-9a-fA-F_]+\b|\b[0-9][0-9_]*\b`)

func stripUnderscoreSeparators(line string) string {
	return numericLiteralRe.ReplaceAllStringFunc(line, func(lit string) string {
		return strings.ReplaceAll(lit, "_", "")
	})
}

// expandCharLiterals turns 'x' and '\n'-style char literals into decimal
// ordinals, the way the teacher's assembler does for its own quoting
// syntax.
func expandCharLiterals(line string) string {
	return charLiteralRe.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if len(str) >= 2 && str[0] == '\\' {
			switch str[1:] {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\x00"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%d", str[0])
	})
}

func tokenize(line string) []string {
	line = strings.ReplaceAll(line, ",", " ")
	return strings.Fields(line)
}

// parse turns raw source into parsedLine records: comment stripping,
// char-literal/underscore preprocessing, label/equate/directive/instruction
// classification. It does not resolve anything cross-line.
func (asm *Assembler) parse(input io.Reader) ([]parsedLine, error) {
	scanner := bufio.NewScanner(input)
	var lines []parsedLine
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		text := raw
		if idx := strings.IndexByte(text, ';'); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			lines = append(lines, parsedLine{lineNo: lineNo, raw: raw, kind: lnEmpty})
			continue
		}

		text = expandCharLiterals(text)
		text = stripUnderscoreSeparators(text)

		words := tokenize(text)

		var labels []string
		for len(words) > 0 && strings.HasSuffix(words[0], ":") {
			labels = append(labels, strings.TrimSuffix(words[0], ":"))
			words = words[1:]
		}
		if len(words) == 0 {
			lines = append(lines, parsedLine{lineNo: lineNo, raw: raw, kind: lnEmpty, labels: labels})
			continue
		}

		if len(words) >= 3 && words[1] == "=" {
			lines = append(lines, parsedLine{
				lineNo: lineNo, raw: raw, labels: labels, kind: lnEquate,
				name: words[0], expr: strings.Join(words[2:], " "),
			})
			continue
		}

		if words[0] == "db" || words[0] == "da" {
			lines = append(lines, parsedLine{
				lineNo: lineNo, raw: raw, labels: labels, kind: lnDirective,
				name: words[0], args: words[1:],
			})
			continue
		}

		lines = append(lines, parsedLine{
			lineNo: lineNo, raw: raw, labels: labels, kind: lnInstr,
			name: words[0], args: words[1:],
		})
	}

	return lines, scanner.Err()
}

var aluBinaryNames = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true, "mod": true,
	"and": true, "or": true, "xor": true, "cmp": true,
}
var aluShiftNames = map[string]bool{"shl": true, "shr": true}

func splitMnemonic(name string) (base, rest string) {
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[:idx], name[idx:]
	}
	return name, ""
}

func formLetter(tok string) string {
	if _, ok := RegByName(tok); ok {
		return "r"
	}
	return "i"
}

// resolveKey builds the instruction-table key for an instruction line
// from its mnemonic text and the syntactic shape of its operands
// (register name vs. anything else), matching the construction in
// opcode.go exactly.
func resolveKey(name string, args []string) (string, error) {
	base, _ := splitMnemonic(name)
	switch {
	case base == "mov":
		if len(args) != 2 {
			return "", ErrSyntax
		}
		return name + "." + map[bool]string{true: "r2r", false: "i2r"}[formLetter(args[1]) == "r"], nil
	case aluBinaryNames[base], aluShiftNames[base]:
		if len(args) != 2 {
			return "", ErrSyntax
		}
		return name + "." + formLetter(args[1]), nil
	case base == "seek":
		if len(args) != 2 {
			return "", ErrSyntax
		}
		return "seek." + formLetter(args[0]) + formLetter(args[1]), nil
	default:
		return name, nil
	}
}

func operandCells(k ArgKind, w cell.Width) uint {
	switch k {
	case ArgReg, ArgImmByte:
		return 1
	case ArgImmWord:
		return w.WordSize
	case ArgImmAddr:
		return w.AddrSize
	default:
		return 0
	}
}

func operandBits(k ArgKind, w cell.Width) uint {
	switch k {
	case ArgReg, ArgImmByte:
		return w.CharBit
	case ArgImmWord:
		return w.WordBits()
	case ArgImmAddr:
		return w.AddrBits()
	default:
		return 0
	}
}

func fitsInRange(v *big.Int, bits uint) bool {
	span := new(big.Int).Lsh(big.NewInt(1), bits)
	half := new(big.Int).Rsh(span, 1)
	lower := new(big.Int).Neg(half)
	return v.Cmp(lower) >= 0 && v.Cmp(span) < 0
}

// symtab is the growing set of resolved names: labels map to byte
// offsets, equates map to arbitrary constant values.
type symtab struct {
	values map[string]*big.Int
}

func newSymtab() *symtab { return &symtab{values: map[string]*big.Int{}} }

func (s *symtab) define(name string, v *big.Int) error {
	if _, exists := s.values[name]; exists {
		return ErrRedefinedSymbol
	}
	s.values[name] = v
	return nil
}

// evalExpr evaluates a constant-expression operand (section 4.8): labels,
// equates, integer literals, sizeof(byte|word|addr), unary ~/-, and the
// binary operators Starlark defines on integers (+ - * // % << >> & | ^),
// via go.starlark.net. Starlark's `/` is real division: its result is not
// an integer, so an expression using it is rejected with ErrSyntax.
func (asm *Assembler) evalExpr(expr string, line int, sym *symtab) (*big.Int, error) {
	thread := &starlark.Thread{Name: "evilvm-asm"}
	globals := starlark.StringDict{}
	for name, v := range sym.values {
		bi := new(big.Int).Set(v)
		globals[name] = starlark.MakeBigInt(bi)
	}
	globals["byte"] = starlark.MakeInt(0)
	globals["word"] = starlark.MakeInt(1)
	globals["addr"] = starlark.MakeInt(2)
	globals["sizeof"] = starlark.NewBuiltin("sizeof", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("sizeof takes exactly one argument")
		}
		tag, ok := args[0].(starlark.Int)
		if !ok {
			return nil, fmt.Errorf("sizeof argument must be byte, word, or addr")
		}
		n, _ := tag.Int64()
		switch n {
		case 0:
			return starlark.MakeUint64(uint64(asm.Width.CharBit)), nil
		case 1:
			return starlark.MakeUint64(uint64(asm.Width.WordSize)), nil
		case 2:
			return starlark.MakeUint64(uint64(asm.Width.AddrSize)), nil
		default:
			return nil, fmt.Errorf("sizeof argument must be byte, word, or addr")
		}
	})

	prog := "_result = (" + expr + ")\n"
	out, err := starlark.ExecFile(thread, "expr", prog, globals)
	if err != nil {
		if strings.Contains(err.Error(), "division by zero") {
			return nil, ErrDivByZeroInConstExpr
		}
		if strings.Contains(err.Error(), "undefined") || strings.Contains(err.Error(), "unbound") ||
			strings.Contains(err.Error(), "not defined") {
			return nil, &UndefinedSymbolError{Symbol: expr, Line: line}
		}
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	result, ok := out["_result"]
	if !ok {
		return nil, ErrSyntax
	}
	i, ok := result.(starlark.Int)
	if !ok {
		return nil, fmt.Errorf("%w: expression %q is not an integer", ErrSyntax, expr)
	}
	return i.BigInt(), nil
}

// Assemble runs both passes over input and returns the assembled
// program image.
func (asm *Assembler) Assemble(input io.Reader) (*Program, error) {
	lines, err := asm.parse(input)
	if err != nil {
		return nil, &SyntaxError{Line: 0, Err: err}
	}

	labels := map[string]uint64{}
	sym := newSymtab()

	// Pass 1: offsets and equates.
	var cursor uint64
	for i := range lines {
		ln := &lines[i]
		for _, label := range ln.labels {
			if _, exists := labels[label]; exists {
				return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: ErrRedefinedSymbol}
			}
			labels[label] = cursor
			// Defined in sym immediately, not after the whole pass, so an
			// equate on this or any later line can reference it; equates
			// are evaluated in scan order and never see a later label.
			if err := sym.define(label, new(big.Int).SetUint64(cursor)); err != nil {
				return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: err}
			}
		}

		switch ln.kind {
		case lnEmpty:
			continue
		case lnEquate:
			v, err := asm.evalExpr(ln.expr, ln.lineNo, sym)
			if err != nil {
				return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: err}
			}
			if err := sym.define(ln.name, v); err != nil {
				return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: err}
			}
		case lnDirective:
			if ln.name == "db" {
				cursor += uint64(len(ln.args))
			} else {
				cursor += uint64(len(ln.args)) * uint64(asm.Width.AddrSize)
			}
		case lnInstr:
			key, err := resolveKey(ln.name, ln.args)
			if err != nil {
				return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: err}
			}
			opcode, ok := Opcode(key)
			if !ok {
				return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: ErrSyntax}
			}
			def := Lookup(opcode)
			if len(ln.args) != len(def.Operands) {
				return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: ErrSyntax}
			}
			ln.key = key
			cursor++
			for _, k := range def.Operands {
				cursor += uint64(operandCells(k, asm.Width))
			}
		}
	}

	// Pass 2: emit.
	var image []uint64
	cursor = 0
	for i := range lines {
		ln := &lines[i]
		switch ln.kind {
		case lnEmpty, lnEquate:
			continue
		case lnDirective:
			if ln.name == "db" {
				for _, arg := range ln.args {
					v, err := asm.evalExpr(arg, ln.lineNo, sym)
					if err != nil {
						return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: err}
					}
					image = append(image, v.Uint64()&asm.Width.CellMask())
					cursor++
				}
			} else {
				for _, arg := range ln.args {
					v, err := asm.evalExpr(arg, ln.lineNo, sym)
					if err != nil {
						return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: err}
					}
					cells := cell.Pack(v, asm.Width.CharBit, asm.Width.AddrSize, cell.Little)
					image = append(image, cells...)
					cursor += uint64(asm.Width.AddrSize)
				}
			}
		case lnInstr:
			def := Lookup(mustOpcode(ln.key))
			opcode, _ := Opcode(ln.key)
			image = append(image, uint64(opcode))
			cursor++
			endian := cell.EndianOf(uint64(opcode))

			for idx, k := range def.Operands {
				token := ln.args[idx]
				n := operandCells(k, asm.Width)

				if k == ArgReg {
					reg, ok := RegByName(token)
					if !ok {
						return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: ErrSyntax}
					}
					if _, isLabel := labels[token]; isLabel {
						return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: ErrAmbiguousInstruction}
					}
					image = append(image, uint64(reg))
					cursor++
					continue
				}

				var v *big.Int
				if def.Relative {
					target, err := asm.evalExpr(token, ln.lineNo, sym)
					if err != nil {
						return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: err}
					}
					operandEnd := new(big.Int).SetUint64(cursor + uint64(n))
					v = new(big.Int).Sub(target, operandEnd)
				} else {
					var err error
					v, err = asm.evalExpr(token, ln.lineNo, sym)
					if err != nil {
						return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: err}
					}
				}

				bits := operandBits(k, asm.Width)
				if !fitsInRange(v, bits) {
					return nil, &SyntaxError{Line: ln.lineNo, Text: ln.raw, Err: ErrOutOfRange}
				}

				cells := cell.Pack(v, asm.Width.CharBit, n, endian)
				image = append(image, cells...)
				cursor += uint64(n)
			}
		}
	}

	return &Program{Width: asm.Width, Image: image, Labels: labels}, nil
}

func mustOpcode(key string) int {
	n, _ := Opcode(key)
	return n
}
