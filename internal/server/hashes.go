package server

import (
	"math"
	"strconv"

	"github.com/nightkv/nightkv/internal/resp"
)

func cmdHSet(ctx *context) resp.Value {
	if len(ctx.args) < 3 || len(ctx.args)%2 != 1 {
		return errWrongArgs("HSET")
	}
	h, wt := ctx.ks.HashForWrite(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	var created int64
	for i := 1; i < len(ctx.args); i += 2 {
		if h.Set(ctx.arg(i), ctx.arg(i+1)) {
			created++
		}
	}
	return resp.MakeInteger(created)
}

func cmdHSetNX(ctx *context) resp.Value {
	if len(ctx.args) != 3 {
		return errWrongArgs("HSETNX")
	}
	h, wt := ctx.ks.HashForWrite(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	return resp.MakeInteger(boolToInt(h.SetNX(ctx.arg(1), ctx.arg(2))))
}

func cmdHGet(ctx *context) resp.Value {
	if len(ctx.args) != 2 {
		return errWrongArgs("HGET")
	}
	h, ok, wt := ctx.ks.Hash(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeNilBulkString()
	}
	v, found := h.Get(ctx.arg(1))
	if !found {
		return resp.MakeNilBulkString()
	}
	return resp.MakeBulkString(v)
}

func cmdHGetAll(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("HGETALL")
	}
	h, ok, wt := ctx.ks.Hash(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeArray(nil)
	}
	pairs := h.All()
	vals := make([]resp.Value, len(pairs))
	for i, p := range pairs {
		vals[i] = resp.MakeBulkString(p)
	}
	return resp.MakeArray(vals)
}

func cmdHDel(ctx *context) resp.Value {
	if len(ctx.args) < 2 {
		return errWrongArgs("HDEL")
	}
	h, ok, wt := ctx.ks.Hash(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeInteger(0)
	}
	fields := make([]string, len(ctx.args)-1)
	for i := 1; i < len(ctx.args); i++ {
		fields[i-1] = ctx.arg(i)
	}
	n := h.Del(fields)
	ctx.ks.DelEmptyHash(ctx.arg(0))
	return resp.MakeInteger(n)
}

func cmdHExists(ctx *context) resp.Value {
	if len(ctx.args) != 2 {
		return errWrongArgs("HEXISTS")
	}
	h, ok, wt := ctx.ks.Hash(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeInteger(0)
	}
	return resp.MakeInteger(boolToInt(h.Exists(ctx.arg(1))))
}

func cmdHIncrBy(ctx *context) resp.Value {
	if len(ctx.args) != 3 {
		return errWrongArgs("HINCRBY")
	}
	delta, err := strconv.ParseInt(ctx.arg(2), 10, 64)
	if err != nil {
		return errNotInteger()
	}
	h, wt := ctx.ks.HashForWrite(ctx.arg(0))
	if wt {
		return errWrongType()
	}

	var cur int64
	if raw, found := h.Get(ctx.arg(1)); found {
		cur, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errHashValueNotInteger()
		}
	}

	sum := cur + delta
	if (delta > 0 && sum < cur) || (delta < 0 && sum > cur) {
		return errIncrOverflow()
	}
	h.Set(ctx.arg(1), strconv.FormatInt(sum, 10))
	return resp.MakeInteger(sum)
}

func cmdHIncrByFloat(ctx *context) resp.Value {
	if len(ctx.args) != 3 {
		return errWrongArgs("HINCRBYFLOAT")
	}
	delta, err := strconv.ParseFloat(ctx.arg(2), 64)
	if err != nil {
		return errNotFloat()
	}
	h, wt := ctx.ks.HashForWrite(ctx.arg(0))
	if wt {
		return errWrongType()
	}

	var cur float64
	if raw, found := h.Get(ctx.arg(1)); found {
		cur, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return errHashValueNotInteger()
		}
	}

	sum := cur + delta
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return errIncrNaN()
	}
	out := strconv.FormatFloat(sum, 'f', -1, 64)
	h.Set(ctx.arg(1), out)
	return resp.MakeBulkString(out)
}

func cmdHKeys(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("HKEYS")
	}
	h, ok, wt := ctx.ks.Hash(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeArray(nil)
	}
	return resp.MakeArray(bulkStrings(h.Keys()))
}

func cmdHVals(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("HVALS")
	}
	h, ok, wt := ctx.ks.Hash(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeArray(nil)
	}
	return resp.MakeArray(bulkStrings(h.Vals()))
}

func cmdHLen(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("HLEN")
	}
	h, ok, wt := ctx.ks.Hash(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeInteger(0)
	}
	return resp.MakeInteger(h.Len())
}

func cmdHMGet(ctx *context) resp.Value {
	if len(ctx.args) < 2 {
		return errWrongArgs("HMGET")
	}
	h, ok, wt := ctx.ks.Hash(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	out := make([]resp.Value, len(ctx.args)-1)
	for i := 1; i < len(ctx.args); i++ {
		if !ok {
			out[i-1] = resp.MakeNilBulkString()
			continue
		}
		if v, found := h.Get(ctx.arg(i)); found {
			out[i-1] = resp.MakeBulkString(v)
		} else {
			out[i-1] = resp.MakeNilBulkString()
		}
	}
	return resp.MakeArray(out)
}

func cmdHStrLen(ctx *context) resp.Value {
	if len(ctx.args) != 2 {
		return errWrongArgs("HSTRLEN")
	}
	h, ok, wt := ctx.ks.Hash(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeInteger(0)
	}
	return resp.MakeInteger(int64(h.StrLen(ctx.arg(1))))
}

func bulkStrings(vals []string) []resp.Value {
	out := make([]resp.Value, len(vals))
	for i, v := range vals {
		out[i] = resp.MakeBulkString(v)
	}
	return out
}
