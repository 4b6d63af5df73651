package server

import (
	"fmt"

	"github.com/nightkv/nightkv/internal/resp"
)

// Error builders centralize the message prefixes spec §7 enumerates, the
// same way the teacher centralizes resp.MakeError/MakeErrorWrongNumberOfArguments.

func errWrongArgs(cmd string) resp.Value {
	return resp.MakeErrorWrongNumberOfArguments(cmd)
}

func errWrongType() resp.Value {
	return resp.MakeError("WRONGTYPE Operation against a key holding the wrong kind of value")
}

func errNotInteger() resp.Value {
	return resp.MakeError("ERR value is not an integer or out of range")
}

func errNotBit() resp.Value {
	return resp.MakeError("ERR bit is not an integer or out of range")
}

func errBadBitOffset() resp.Value {
	return resp.MakeError("ERR bit offset is not an integer or out of range")
}

func errNotFloat() resp.Value {
	return resp.MakeError("ERR value is not a valid float")
}

func errHashValueNotInteger() resp.Value {
	return resp.MakeError("ERR hash value is not an integer")
}

func errIncrOverflow() resp.Value {
	return resp.MakeError("ERR increment or decrement would overflow")
}

func errIncrNaN() resp.Value {
	return resp.MakeError("ERR increment would produce NaN or Infinity")
}

func errSyntax() resp.Value {
	return resp.MakeError("ERR syntax error")
}

func errUnknownCommand(name string, args []resp.Value) resp.Value {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, string(a.String))
	}
	return resp.MakeError(fmt.Sprintf("ERR unknown command '%s', with args beginning with: %v", name, parts))
}
