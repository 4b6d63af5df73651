package server

import (
	"strconv"
	"strings"

	"github.com/nightkv/nightkv/internal/bitops"
	"github.com/nightkv/nightkv/internal/resp"
)

func cmdGetBit(ctx *context) resp.Value {
	if len(ctx.args) != 2 {
		return errWrongArgs("GETBIT")
	}
	offset, err := strconv.ParseInt(ctx.arg(1), 10, 64)
	if err != nil {
		return errBadBitOffset()
	}
	val, _, wt := ctx.ks.GetString(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	bit, err := bitops.GetBit(val, offset)
	if err != nil {
		return errBadBitOffset()
	}
	return resp.MakeInteger(int64(bit))
}

func cmdSetBit(ctx *context) resp.Value {
	if len(ctx.args) != 3 {
		return errWrongArgs("SETBIT")
	}
	offset, err := strconv.ParseInt(ctx.arg(1), 10, 64)
	if err != nil {
		return errBadBitOffset()
	}
	bitVal, err := strconv.ParseInt(ctx.arg(2), 10, 64)
	if err != nil || (bitVal != 0 && bitVal != 1) {
		return errNotBit()
	}

	var prev byte
	var setErr error
	wt := ctx.ks.MutateString(ctx.arg(0), func(cur []byte) []byte {
		next, p, e := bitops.SetBit(cur, offset, byte(bitVal))
		prev, setErr = p, e
		return next
	})
	if wt {
		return errWrongType()
	}
	if setErr != nil {
		return errBadBitOffset()
	}
	return resp.MakeInteger(int64(prev))
}

func parseBitOp(tok string) (bitops.Op, bool) {
	switch strings.ToUpper(tok) {
	case "AND":
		return bitops.OpAnd, true
	case "OR":
		return bitops.OpOr, true
	case "XOR":
		return bitops.OpXor, true
	case "NOT":
		return bitops.OpNot, true
	default:
		return 0, false
	}
}

func cmdBitOp(ctx *context) resp.Value {
	if len(ctx.args) < 3 {
		return errWrongArgs("BITOP")
	}
	op, ok := parseBitOp(ctx.arg(0))
	if !ok {
		return errSyntax()
	}
	destKey := ctx.arg(1)
	srcKeys := ctx.args[2:]
	if op == bitops.OpNot && len(srcKeys) != 1 {
		return errSyntax()
	}

	inputs := make([][]byte, len(srcKeys))
	for i, k := range srcKeys {
		val, _, wt := ctx.ks.GetString(string(k.String))
		if wt {
			return errWrongType()
		}
		inputs[i] = val
	}

	out, err := bitops.BitOp(op, inputs)
	if err != nil {
		return errSyntax()
	}
	if out == nil {
		ctx.ks.Del(destKey)
		return resp.MakeInteger(0)
	}
	ctx.ks.SetString(destKey, out, true)
	return resp.MakeInteger(int64(len(out)))
}

func parseRangeUnit(args []resp.Value, i int) (hasRange bool, start, end int64, bitUnit bool, next int, errVal resp.Value) {
	if i >= len(args) {
		return false, 0, 0, false, i, resp.Value{}
	}
	var err error
	start, err = strconv.ParseInt(string(args[i].String), 10, 64)
	if err != nil {
		return false, 0, 0, false, i, errNotInteger()
	}
	i++
	if i >= len(args) {
		return false, 0, 0, false, i, errSyntax()
	}
	end, err = strconv.ParseInt(string(args[i].String), 10, 64)
	if err != nil {
		return false, 0, 0, false, i, errNotInteger()
	}
	i++
	if i < len(args) {
		switch strings.ToUpper(string(args[i].String)) {
		case "BYTE":
			bitUnit = false
			i++
		case "BIT":
			bitUnit = true
			i++
		default:
			return false, 0, 0, false, i, errSyntax()
		}
	}
	return true, start, end, bitUnit, i, resp.Value{}
}

func cmdBitCount(ctx *context) resp.Value {
	if len(ctx.args) < 1 {
		return errWrongArgs("BITCOUNT")
	}
	val, _, wt := ctx.ks.GetString(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	hasRange, start, end, bitUnit, next, errVal := parseRangeUnit(ctx.args, 1)
	if errVal.Type == resp.TypeError {
		return errVal
	}
	if next != len(ctx.args) {
		return errSyntax()
	}
	return resp.MakeInteger(bitops.BitCount(val, hasRange, start, end, bitUnit))
}

func cmdBitPos(ctx *context) resp.Value {
	if len(ctx.args) < 2 {
		return errWrongArgs("BITPOS")
	}
	val, _, wt := ctx.ks.GetString(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	target, err := strconv.ParseInt(ctx.arg(1), 10, 64)
	if err != nil || (target != 0 && target != 1) {
		return errNotBit()
	}
	hasRange, start, end, bitUnit, next, errVal := parseRangeUnit(ctx.args, 2)
	if errVal.Type == resp.TypeError {
		return errVal
	}
	if next != len(ctx.args) {
		return errSyntax()
	}
	return resp.MakeInteger(bitops.BitPos(val, byte(target), hasRange, start, end, bitUnit))
}

type bitfieldOp struct {
	kind   string // GET, SET, INCRBY
	ft     bitops.FieldType
	offset int64
	value  int64
}

func parseBitfieldOffset(tok string, width int) (int64, bool) {
	relative := strings.HasPrefix(tok, "#")
	numTok := tok
	if relative {
		numTok = tok[1:]
	}
	n, err := strconv.ParseInt(numTok, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return bitops.ResolveOffset(relative, n, width), true
}

func cmdBitField(ctx *context) resp.Value {
	if len(ctx.args) < 1 {
		return errWrongArgs("BITFIELD")
	}
	key := ctx.arg(0)

	var ops []bitfieldOp
	i := 1
	for i < len(ctx.args) {
		tok := strings.ToUpper(ctx.arg(i))
		switch tok {
		case "OVERFLOW":
			i++
			if i >= len(ctx.args) {
				return errSyntax()
			}
			mode := strings.ToUpper(ctx.arg(i))
			if mode != "WRAP" {
				return errSyntax()
			}
			i++
		case "GET":
			if i+2 >= len(ctx.args) {
				return errSyntax()
			}
			ft, err := bitops.ParseFieldType(ctx.arg(i + 1))
			if err != nil {
				return errSyntax()
			}
			offset, ok := parseBitfieldOffset(ctx.arg(i+2), ft.Bits)
			if !ok {
				return errBadBitOffset()
			}
			ops = append(ops, bitfieldOp{kind: "GET", ft: ft, offset: offset})
			i += 3
		case "SET":
			if i+3 >= len(ctx.args) {
				return errSyntax()
			}
			ft, err := bitops.ParseFieldType(ctx.arg(i + 1))
			if err != nil {
				return errSyntax()
			}
			offset, ok := parseBitfieldOffset(ctx.arg(i+2), ft.Bits)
			if !ok {
				return errBadBitOffset()
			}
			v, err := strconv.ParseInt(ctx.arg(i+3), 10, 64)
			if err != nil {
				return errNotInteger()
			}
			ops = append(ops, bitfieldOp{kind: "SET", ft: ft, offset: offset, value: v})
			i += 4
		case "INCRBY":
			if i+3 >= len(ctx.args) {
				return errSyntax()
			}
			ft, err := bitops.ParseFieldType(ctx.arg(i + 1))
			if err != nil {
				return errSyntax()
			}
			offset, ok := parseBitfieldOffset(ctx.arg(i+2), ft.Bits)
			if !ok {
				return errBadBitOffset()
			}
			v, err := strconv.ParseInt(ctx.arg(i+3), 10, 64)
			if err != nil {
				return errNotInteger()
			}
			ops = append(ops, bitfieldOp{kind: "INCRBY", ft: ft, offset: offset, value: v})
			i += 4
		default:
			return errSyntax()
		}
	}

	results := make([]resp.Value, 0, len(ops))
	var opErr resp.Value
	wt := ctx.ks.MutateString(key, func(cur []byte) []byte {
		for _, op := range ops {
			switch op.kind {
			case "GET":
				results = append(results, resp.MakeInteger(bitops.GetField(cur, op.ft, op.offset)))
			case "SET":
				next, old, err := bitops.SetField(cur, op.ft, op.offset, op.value)
				if err != nil {
					opErr = errBadBitOffset()
					return cur
				}
				cur = next
				results = append(results, resp.MakeInteger(old))
			case "INCRBY":
				next, val, err := bitops.IncrByField(cur, op.ft, op.offset, op.value)
				if err != nil {
					opErr = errBadBitOffset()
					return cur
				}
				cur = next
				results = append(results, resp.MakeInteger(val))
			}
		}
		return cur
	})
	if wt {
		return errWrongType()
	}
	if opErr.Type == resp.TypeError {
		return opErr
	}
	return resp.MakeArray(results)
}
