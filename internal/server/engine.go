// Package server implements nightkv's command surface: a dispatch table
// from command name to handler, the handlers themselves, and their error
// and introspection (COMMAND/COMMAND DOCS) support. It is the boundary
// spec.md §4.9 describes; everything below it is internal/keyspace and the
// value packages it wires together.
package server

import (
	"strings"

	"github.com/nightkv/nightkv/internal/keyspace"
	"github.com/nightkv/nightkv/internal/resp"
	"go.uber.org/zap"
)

// Engine owns the command registry and the keyspace it dispatches against.
type Engine struct {
	commands map[string]command
	ks       *keyspace.Keyspace
	logger   *zap.Logger
}

// NewEngine builds an Engine over ks and registers every supported command.
func NewEngine(ks *keyspace.Keyspace, logger *zap.Logger) *Engine {
	e := &Engine{
		commands: make(map[string]command),
		ks:       ks,
		logger:   logger,
	}
	e.registerCommands()
	return e
}

// Keyspace returns the engine's underlying keyspace, for the event loop's
// cron driver.
func (e *Engine) Keyspace() *keyspace.Keyspace {
	return e.ks
}

func (e *Engine) register(name string, cmd command) {
	e.commands[strings.ToUpper(name)] = cmd
}

// Execute looks up name and runs it against args, returning the RESP reply.
// An unrecognized command name produces spec §7's "Unknown command" error
// category rather than panicking or closing the connection (only protocol
// errors are connection-fatal).
func (e *Engine) Execute(name string, args []resp.Value) resp.Value {
	upper := strings.ToUpper(name)

	if e.logger != nil && e.logger.Core().Enabled(zap.DebugLevel) {
		e.logger.Debug("executing command",
			zap.String("cmd", upper),
			zap.Int("args_count", len(args)),
		)
	}

	cmd, ok := e.commands[upper]
	if !ok {
		return errUnknownCommand(name, args)
	}

	ctx := &context{args: args, ks: e.ks}
	return cmd.execute(ctx)
}

func (e *Engine) registerCommands() {
	e.register("PING", commandFunc(cmdPing))
	e.register("ECHO", commandFunc(cmdEcho))
	e.register("COMMAND", commandFunc(e.cmdCommand))

	e.register("GET", commandFunc(cmdGet))
	e.register("SET", commandFunc(cmdSet))
	e.register("GETSET", commandFunc(cmdGetSet))
	e.register("APPEND", commandFunc(cmdAppend))
	e.register("STRLEN", commandFunc(cmdStrlen))
	e.register("DEL", commandFunc(cmdDel))
	e.register("EXISTS", commandFunc(cmdExists))
	e.register("TYPE", commandFunc(cmdType))
	e.register("TTL", commandFunc(cmdTTL))
	e.register("PTTL", commandFunc(cmdPTTL))
	e.register("EXPIRE", commandFunc(cmdExpire))
	e.register("PEXPIRE", commandFunc(cmdPExpire))
	e.register("PERSIST", commandFunc(cmdPersist))

	e.register("GETBIT", commandFunc(cmdGetBit))
	e.register("SETBIT", commandFunc(cmdSetBit))
	e.register("BITOP", commandFunc(cmdBitOp))
	e.register("BITCOUNT", commandFunc(cmdBitCount))
	e.register("BITPOS", commandFunc(cmdBitPos))
	e.register("BITFIELD", commandFunc(cmdBitField))

	e.register("HSET", commandFunc(cmdHSet))
	e.register("HSETNX", commandFunc(cmdHSetNX))
	e.register("HGET", commandFunc(cmdHGet))
	e.register("HGETALL", commandFunc(cmdHGetAll))
	e.register("HDEL", commandFunc(cmdHDel))
	e.register("HEXISTS", commandFunc(cmdHExists))
	e.register("HINCRBY", commandFunc(cmdHIncrBy))
	e.register("HINCRBYFLOAT", commandFunc(cmdHIncrByFloat))
	e.register("HKEYS", commandFunc(cmdHKeys))
	e.register("HVALS", commandFunc(cmdHVals))
	e.register("HLEN", commandFunc(cmdHLen))
	e.register("HMGET", commandFunc(cmdHMGet))
	e.register("HSTRLEN", commandFunc(cmdHStrLen))

	e.register("SADD", commandFunc(cmdSAdd))
	e.register("SREM", commandFunc(cmdSRem))
	e.register("SISMEMBER", commandFunc(cmdSIsMember))
	e.register("SMEMBERS", commandFunc(cmdSMembers))
	e.register("SCARD", commandFunc(cmdSCard))
	e.register("SRANDMEMBER", commandFunc(cmdSRandMember))
	e.register("SPOP", commandFunc(cmdSPop))
	e.register("SINTER", commandFunc(cmdSInter))
	e.register("SUNION", commandFunc(cmdSUnion))
	e.register("SDIFF", commandFunc(cmdSDiff))
	e.register("SINTERSTORE", commandFunc(cmdSInterStore))
	e.register("SUNIONSTORE", commandFunc(cmdSUnionStore))
	e.register("SDIFFSTORE", commandFunc(cmdSDiffStore))
}

// isWriteCommand reports whether name mutates the keyspace. Nothing in the
// package calls it; COMMAND takes its flags from commandRegistry.
func isWriteCommand(name string) bool {
	switch strings.ToUpper(name) {
	case "SET", "GETSET", "APPEND", "DEL", "EXPIRE", "PEXPIRE", "PERSIST",
		"SETBIT", "BITOP", "BITFIELD",
		"HSET", "HSETNX", "HDEL", "HINCRBY", "HINCRBYFLOAT",
		"SADD", "SREM", "SPOP", "SINTERSTORE", "SUNIONSTORE", "SDIFFSTORE":
		return true
	}
	return false
}
