package server

import (
	"strconv"

	"github.com/nightkv/nightkv/internal/resp"
	"github.com/nightkv/nightkv/internal/setval"
)

func cmdSAdd(ctx *context) resp.Value {
	if len(ctx.args) < 2 {
		return errWrongArgs("SADD")
	}
	s, wt := ctx.ks.SetForWrite(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	var added int64
	for i := 1; i < len(ctx.args); i++ {
		if s.Add(ctx.arg(i)) {
			added++
		}
	}
	return resp.MakeInteger(added)
}

func cmdSRem(ctx *context) resp.Value {
	if len(ctx.args) < 2 {
		return errWrongArgs("SREM")
	}
	s, ok, wt := ctx.ks.Set(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeInteger(0)
	}
	var removed int64
	for i := 1; i < len(ctx.args); i++ {
		if s.Remove(ctx.arg(i)) {
			removed++
		}
	}
	ctx.ks.DelEmptySet(ctx.arg(0))
	return resp.MakeInteger(removed)
}

func cmdSIsMember(ctx *context) resp.Value {
	if len(ctx.args) != 2 {
		return errWrongArgs("SISMEMBER")
	}
	s, ok, wt := ctx.ks.Set(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeInteger(0)
	}
	return resp.MakeInteger(boolToInt(s.Contains(ctx.arg(1))))
}

func cmdSMembers(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("SMEMBERS")
	}
	s, ok, wt := ctx.ks.Set(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeArray(nil)
	}
	return resp.MakeArray(bulkStrings(s.Members()))
}

func cmdSCard(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("SCARD")
	}
	s, ok, wt := ctx.ks.Set(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeInteger(0)
	}
	return resp.MakeInteger(int64(s.Cardinality()))
}

func cmdSRandMember(ctx *context) resp.Value {
	if len(ctx.args) < 1 || len(ctx.args) > 2 {
		return errWrongArgs("SRANDMEMBER")
	}
	s, ok, wt := ctx.ks.Set(ctx.arg(0))
	if wt {
		return errWrongType()
	}

	if len(ctx.args) == 1 {
		if !ok {
			return resp.MakeNilBulkString()
		}
		m, found := s.RandomMember()
		if !found {
			return resp.MakeNilBulkString()
		}
		return resp.MakeBulkString(m)
	}

	count, err := strconv.ParseInt(ctx.arg(1), 10, 64)
	if err != nil {
		return errNotInteger()
	}
	if !ok {
		return resp.MakeArray(nil)
	}
	return resp.MakeArray(bulkStrings(s.RandomMembersWithCount(int(count))))
}

func cmdSPop(ctx *context) resp.Value {
	if len(ctx.args) < 1 || len(ctx.args) > 2 {
		return errWrongArgs("SPOP")
	}
	s, ok, wt := ctx.ks.Set(ctx.arg(0))
	if wt {
		return errWrongType()
	}

	if len(ctx.args) == 1 {
		if !ok {
			return resp.MakeNilBulkString()
		}
		m, found := s.Pop()
		ctx.ks.DelEmptySet(ctx.arg(0))
		if !found {
			return resp.MakeNilBulkString()
		}
		return resp.MakeBulkString(m)
	}

	count, err := strconv.ParseInt(ctx.arg(1), 10, 64)
	if err != nil || count < 0 {
		return errNotInteger()
	}
	if !ok {
		return resp.MakeArray(nil)
	}
	popped := s.PopWithCount(int(count))
	ctx.ks.DelEmptySet(ctx.arg(0))
	return resp.MakeArray(bulkStrings(popped))
}

func (ctx *context) loadSets(from int) ([]*setval.Set, resp.Value) {
	sets := make([]*setval.Set, 0, len(ctx.args)-from)
	for i := from; i < len(ctx.args); i++ {
		s, ok, wt := ctx.ks.Set(ctx.arg(i))
		if wt {
			return nil, errWrongType()
		}
		if !ok {
			s = setval.New(256)
		}
		sets = append(sets, s)
	}
	return sets, resp.Value{}
}

func cmdSInter(ctx *context) resp.Value {
	if len(ctx.args) < 1 {
		return errWrongArgs("SINTER")
	}
	sets, errVal := ctx.loadSets(0)
	if errVal.Type == resp.TypeError {
		return errVal
	}
	return resp.MakeArray(bulkStrings(setval.Intersect(sets).Members()))
}

func cmdSUnion(ctx *context) resp.Value {
	if len(ctx.args) < 1 {
		return errWrongArgs("SUNION")
	}
	sets, errVal := ctx.loadSets(0)
	if errVal.Type == resp.TypeError {
		return errVal
	}
	return resp.MakeArray(bulkStrings(setval.Union(sets).Members()))
}

func cmdSDiff(ctx *context) resp.Value {
	if len(ctx.args) < 1 {
		return errWrongArgs("SDIFF")
	}
	sets, errVal := ctx.loadSets(0)
	if errVal.Type == resp.TypeError {
		return errVal
	}
	return resp.MakeArray(bulkStrings(setval.Difference(sets).Members()))
}

func cmdSInterStore(ctx *context) resp.Value {
	if len(ctx.args) < 2 {
		return errWrongArgs("SINTERSTORE")
	}
	sets, errVal := ctx.loadSets(1)
	if errVal.Type == resp.TypeError {
		return errVal
	}
	result := setval.Intersect(sets)
	ctx.ks.StoreSet(ctx.arg(0), result)
	return resp.MakeInteger(int64(result.Cardinality()))
}

func cmdSUnionStore(ctx *context) resp.Value {
	if len(ctx.args) < 2 {
		return errWrongArgs("SUNIONSTORE")
	}
	sets, errVal := ctx.loadSets(1)
	if errVal.Type == resp.TypeError {
		return errVal
	}
	result := setval.Union(sets)
	ctx.ks.StoreSet(ctx.arg(0), result)
	return resp.MakeInteger(int64(result.Cardinality()))
}

func cmdSDiffStore(ctx *context) resp.Value {
	if len(ctx.args) < 2 {
		return errWrongArgs("SDIFFSTORE")
	}
	sets, errVal := ctx.loadSets(1)
	if errVal.Type == resp.TypeError {
		return errVal
	}
	result := setval.Difference(sets)
	ctx.ks.StoreSet(ctx.arg(0), result)
	return resp.MakeInteger(int64(result.Cardinality()))
}
