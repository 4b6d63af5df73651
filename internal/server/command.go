package server

import (
	"github.com/nightkv/nightkv/internal/keyspace"
	"github.com/nightkv/nightkv/internal/resp"
)

// context carries one command invocation's arguments (the bulk strings
// following the command name) and a handle to the keyspace it operates on.
type context struct {
	args []resp.Value
	ks   *keyspace.Keyspace
}

// arg returns the i-th argument's raw bytes as a string.
func (c *context) arg(i int) string {
	return string(c.args[i].String)
}

// command is anything the dispatch table can execute. commandFunc adapts a
// plain function to this interface, the same pattern the teacher's engine
// used for its own (smaller) command set.
type command interface {
	execute(ctx *context) resp.Value
}

type commandFunc func(ctx *context) resp.Value

func (f commandFunc) execute(ctx *context) resp.Value {
	return f(ctx)
}
