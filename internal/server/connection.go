package server

import (
	"strings"

	"github.com/nightkv/nightkv/internal/resp"
)

func cmdPing(ctx *context) resp.Value {
	switch len(ctx.args) {
	case 0:
		return resp.MakeSimpleString("PONG")
	case 1:
		return resp.MakeBulkString(ctx.arg(0))
	default:
		return errWrongArgs("PING")
	}
}

func cmdEcho(ctx *context) resp.Value {
	if len(ctx.args) != 1 {
		return errWrongArgs("ECHO")
	}
	return resp.MakeBulkString(ctx.arg(0))
}

// cmdCommand backs COMMAND and COMMAND DOCS (docs.go's registries).
func (e *Engine) cmdCommand(ctx *context) resp.Value {
	if len(ctx.args) > 0 && strings.EqualFold(ctx.arg(0), "DOCS") {
		return getCommandsDocs(ctx.args[1:])
	}
	return getAllCommands()
}
