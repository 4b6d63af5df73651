package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/nightkv/nightkv/internal/resp"
)

func cmdGet(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("GET")
	}
	val, ok, wt := ctx.ks.GetString(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	if !ok {
		return resp.MakeNilBulkString()
	}
	return resp.Value{Type: resp.TypeBulkString, String: val}
}

// setOptions holds the parsed trailing options of SET key value [...].
type setOptions struct {
	nx, xx, keepTTL bool
	hasTTL          bool
	deadlineMs      int64
}

func parseSetOptions(args []resp.Value) (setOptions, resp.Value) {
	var opt setOptions
	now := time.Now().UnixMilli()

	for i := 0; i < len(args); i++ {
		tok := strings.ToUpper(string(args[i].String))
		switch tok {
		case "NX":
			if opt.xx {
				return opt, errSyntax()
			}
			opt.nx = true
		case "XX":
			if opt.nx {
				return opt, errSyntax()
			}
			opt.xx = true
		case "KEEPTTL":
			if opt.hasTTL {
				return opt, errSyntax()
			}
			opt.keepTTL = true
		case "EX", "PX", "EXAT", "PXAT":
			if opt.hasTTL || opt.keepTTL {
				return opt, errSyntax()
			}
			i++
			if i >= len(args) {
				return opt, errSyntax()
			}
			n, err := strconv.ParseInt(string(args[i].String), 10, 64)
			if err != nil {
				return opt, errNotInteger()
			}
			switch tok {
			case "EX":
				opt.deadlineMs = now + n*1000
			case "PX":
				opt.deadlineMs = now + n
			case "EXAT":
				opt.deadlineMs = n * 1000
			case "PXAT":
				opt.deadlineMs = n
			}
			opt.hasTTL = true
		default:
			return opt, errSyntax()
		}
	}
	return opt, resp.Value{}
}

func cmdSet(ctx *context) resp.Value {
	if len(ctx.args) < 2 {
		return errWrongArgs("SET")
	}
	key, val := ctx.arg(0), []byte(ctx.arg(1))

	opt, errVal := parseSetOptions(ctx.args[2:])
	if errVal.Type == resp.TypeError {
		return errVal
	}

	exists := ctx.ks.Exists(key)
	if opt.nx && exists {
		return resp.MakeNilBulkString()
	}
	if opt.xx && !exists {
		return resp.MakeNilBulkString()
	}

	ctx.ks.SetString(key, val, opt.keepTTL)
	if opt.hasTTL {
		ctx.ks.ExpireAt(key, opt.deadlineMs)
	}
	return resp.MakeSimpleString("OK")
}

func cmdGetSet(ctx *context) resp.Value {
	if len(ctx.args) != 2 {
		return errWrongArgs("GETSET")
	}
	old, present, wt := ctx.ks.GetSet(ctx.arg(0), []byte(ctx.arg(1)))
	if wt {
		return errWrongType()
	}
	if !present {
		return resp.MakeNilBulkString()
	}
	return resp.Value{Type: resp.TypeBulkString, String: old}
}

func cmdAppend(ctx *context) resp.Value {
	if len(ctx.args) != 2 {
		return errWrongArgs("APPEND")
	}
	n, wt := ctx.ks.Append(ctx.arg(0), []byte(ctx.arg(1)))
	if wt {
		return errWrongType()
	}
	return resp.MakeInteger(n)
}

func cmdStrlen(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("STRLEN")
	}
	n, wt := ctx.ks.StrLen(ctx.arg(0))
	if wt {
		return errWrongType()
	}
	return resp.MakeInteger(n)
}

func cmdDel(ctx *context) resp.Value {
	if len(ctx.args) < 1 {
		return errWrongArgs("DEL")
	}
	keys := make([]string, len(ctx.args))
	for i := range ctx.args {
		keys[i] = ctx.arg(i)
	}
	return resp.MakeInteger(ctx.ks.Del(keys...))
}

func cmdExists(ctx *context) resp.Value {
	if len(ctx.args) < 1 {
		return errWrongArgs("EXISTS")
	}
	var n int64
	for i := range ctx.args {
		if ctx.ks.Exists(ctx.arg(i)) {
			n++
		}
	}
	return resp.MakeInteger(n)
}

func cmdType(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("TYPE")
	}
	t, ok := ctx.ks.Type(ctx.arg(0))
	if !ok {
		return resp.MakeSimpleString("none")
	}
	return resp.MakeSimpleString(t)
}

func cmdTTL(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("TTL")
	}
	ms := ctx.ks.TTLMillis(ctx.arg(0))
	if ms < 0 {
		return resp.MakeInteger(ms)
	}
	seconds := (ms + 999) / 1000
	return resp.MakeInteger(seconds)
}

func cmdPTTL(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("PTTL")
	}
	return resp.MakeInteger(ctx.ks.TTLMillis(ctx.arg(0)))
}

func cmdExpire(ctx *context) resp.Value {
	if len(ctx.args) != 2 {
		return errWrongArgs("EXPIRE")
	}
	seconds, err := strconv.ParseInt(ctx.arg(1), 10, 64)
	if err != nil {
		return errNotInteger()
	}
	ok := ctx.ks.ExpireAt(ctx.arg(0), time.Now().UnixMilli()+seconds*1000)
	return resp.MakeInteger(boolToInt(ok))
}

func cmdPExpire(ctx *context) resp.Value {
	if len(ctx.args) != 2 {
		return errWrongArgs("PEXPIRE")
	}
	millis, err := strconv.ParseInt(ctx.arg(1), 10, 64)
	if err != nil {
		return errNotInteger()
	}
	ok := ctx.ks.ExpireAt(ctx.arg(0), time.Now().UnixMilli()+millis)
	return resp.MakeInteger(boolToInt(ok))
}

func cmdPersist(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("PERSIST")
	}
	return resp.MakeInteger(boolToInt(ctx.ks.Persist(ctx.arg(0))))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
