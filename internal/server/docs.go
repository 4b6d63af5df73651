package server

import (
	"strings"

	"github.com/nightkv/nightkv/internal/resp"
)

// commandMetadata is the (arity, flags, first_key, last_key, key_step)
// tuple spec §4.9 requires to exist for dispatch; COMMAND exposes it.
type commandMetadata struct {
	arity    int      // arity includes the command name itself
	flags    []string // read, write, fast, denyoom, etc
	firstKey int      // 1-based index of the first key
	lastKey  int      // 1-based index of the last key (-1 means "to the end")
	step     int      // step count for finding keys
}

var commandRegistry = map[string]commandMetadata{
	"PING":    {-1, []string{"fast", "stale"}, 0, 0, 0},
	"ECHO":    {2, []string{"fast"}, 0, 0, 0},
	"COMMAND": {-1, []string{"random", "loading", "stale"}, 0, 0, 0},

	"GET":     {2, []string{"readonly", "fast"}, 1, 1, 1},
	"SET":     {-3, []string{"write", "denyoom"}, 1, 1, 1},
	"GETSET":  {3, []string{"write", "denyoom"}, 1, 1, 1},
	"APPEND":  {3, []string{"write", "denyoom"}, 1, 1, 1},
	"STRLEN":  {2, []string{"readonly", "fast"}, 1, 1, 1},
	"DEL":     {-2, []string{"write"}, 1, -1, 1},
	"EXISTS":  {-2, []string{"readonly", "fast"}, 1, -1, 1},
	"TYPE":    {2, []string{"readonly", "fast"}, 1, 1, 1},
	"TTL":     {2, []string{"readonly", "fast"}, 1, 1, 1},
	"PTTL":    {2, []string{"readonly", "fast"}, 1, 1, 1},
	"EXPIRE":  {3, []string{"write", "fast"}, 1, 1, 1},
	"PEXPIRE": {3, []string{"write", "fast"}, 1, 1, 1},
	"PERSIST": {2, []string{"write", "fast"}, 1, 1, 1},

	"GETBIT":   {3, []string{"readonly", "fast"}, 1, 1, 1},
	"SETBIT":   {4, []string{"write", "denyoom"}, 1, 1, 1},
	"BITOP":    {-4, []string{"write", "denyoom"}, 2, -1, 1},
	"BITCOUNT": {-2, []string{"readonly"}, 1, 1, 1},
	"BITPOS":   {-3, []string{"readonly"}, 1, 1, 1},
	"BITFIELD": {-2, []string{"write", "denyoom"}, 1, 1, 1},

	"HSET":         {-4, []string{"write", "denyoom"}, 1, 1, 1},
	"HSETNX":       {4, []string{"write", "denyoom"}, 1, 1, 1},
	"HGET":         {3, []string{"readonly", "fast"}, 1, 1, 1},
	"HGETALL":      {2, []string{"readonly"}, 1, 1, 1},
	"HDEL":         {-3, []string{"write", "fast"}, 1, 1, 1},
	"HEXISTS":      {3, []string{"readonly", "fast"}, 1, 1, 1},
	"HINCRBY":      {4, []string{"write", "denyoom", "fast"}, 1, 1, 1},
	"HINCRBYFLOAT": {4, []string{"write", "denyoom", "fast"}, 1, 1, 1},
	"HKEYS":        {2, []string{"readonly"}, 1, 1, 1},
	"HVALS":        {2, []string{"readonly"}, 1, 1, 1},
	"HLEN":         {2, []string{"readonly", "fast"}, 1, 1, 1},
	"HMGET":        {-3, []string{"readonly", "fast"}, 1, 1, 1},
	"HSTRLEN":      {3, []string{"readonly", "fast"}, 1, 1, 1},

	"SADD":        {-3, []string{"write", "denyoom"}, 1, 1, 1},
	"SREM":        {-3, []string{"write", "fast"}, 1, 1, 1},
	"SISMEMBER":   {3, []string{"readonly", "fast"}, 1, 1, 1},
	"SMEMBERS":    {2, []string{"readonly"}, 1, 1, 1},
	"SCARD":       {2, []string{"readonly", "fast"}, 1, 1, 1},
	"SRANDMEMBER": {-2, []string{"readonly"}, 1, 1, 1},
	"SPOP":        {-2, []string{"write", "fast"}, 1, 1, 1},
	"SINTER":      {-2, []string{"readonly"}, 1, -1, 1},
	"SUNION":      {-2, []string{"readonly"}, 1, -1, 1},
	"SDIFF":       {-2, []string{"readonly"}, 1, -1, 1},
	"SINTERSTORE": {-3, []string{"write", "denyoom"}, 1, -1, 1},
	"SUNIONSTORE": {-3, []string{"write", "denyoom"}, 1, -1, 1},
	"SDIFFSTORE":  {-3, []string{"write", "denyoom"}, 1, -1, 1},
}

// commandDoc stores a description for the command, matching COMMAND DOCS'
// shape.
type commandDoc struct {
	summary    string
	complexity string
	group      string
	since      string
}

var commandDocsRegistry = buildDocsRegistry()

func buildDocsRegistry() map[string]commandDoc {
	group := func(g, summary, complexity string) commandDoc {
		return commandDoc{summary: summary, complexity: complexity, group: g, since: "1.0.0"}
	}
	return map[string]commandDoc{
		"PING":    group("connection", "Ping the server.", "O(1)"),
		"ECHO":    group("connection", "Echo the given string.", "O(1)"),
		"COMMAND": group("server", "Get array of command details.", "O(N)"),

		"GET":     group("string", "Get the value of a key.", "O(1)"),
		"SET":     group("string", "Set the string value of a key.", "O(1)"),
		"GETSET":  group("string", "Set a key's value and return its old value.", "O(1)"),
		"APPEND":  group("string", "Append a value to a key.", "O(1)"),
		"STRLEN":  group("string", "Get the length of the value stored in a key.", "O(1)"),
		"DEL":     group("generic", "Delete a key.", "O(N)"),
		"EXISTS":  group("generic", "Determine if a key exists.", "O(N)"),
		"TYPE":    group("generic", "Determine the type stored at key.", "O(1)"),
		"TTL":     group("generic", "Get the time to live for a key in seconds.", "O(1)"),
		"PTTL":    group("generic", "Get the time to live for a key in milliseconds.", "O(1)"),
		"EXPIRE":  group("generic", "Set a key's time to live in seconds.", "O(1)"),
		"PEXPIRE": group("generic", "Set a key's time to live in milliseconds.", "O(1)"),
		"PERSIST": group("generic", "Remove the expiration from a key.", "O(1)"),

		"GETBIT":   group("bitmap", "Returns the bit value at offset in the string value stored at key.", "O(1)"),
		"SETBIT":   group("bitmap", "Sets or clears the bit at offset in the string value stored at key.", "O(1)"),
		"BITOP":    group("bitmap", "Perform bitwise operations between strings.", "O(N)"),
		"BITCOUNT": group("bitmap", "Count set bits in a string.", "O(N)"),
		"BITPOS":   group("bitmap", "Find first bit set or clear in a string.", "O(N)"),
		"BITFIELD": group("bitmap", "Perform arbitrary bitfield integer operations on strings.", "O(N)"),

		"HSET":         group("hash", "Set the value of one or more hash fields.", "O(N)"),
		"HSETNX":       group("hash", "Set a hash field only if it does not exist.", "O(1)"),
		"HGET":         group("hash", "Get the value of a hash field.", "O(1)"),
		"HGETALL":      group("hash", "Get all fields and values in a hash.", "O(N)"),
		"HDEL":         group("hash", "Delete one or more hash fields.", "O(N)"),
		"HEXISTS":      group("hash", "Determine if a hash field exists.", "O(1)"),
		"HINCRBY":      group("hash", "Increment a hash field by an integer.", "O(1)"),
		"HINCRBYFLOAT": group("hash", "Increment a hash field by a float.", "O(1)"),
		"HKEYS":        group("hash", "Get all fields in a hash.", "O(N)"),
		"HVALS":        group("hash", "Get all values in a hash.", "O(N)"),
		"HLEN":         group("hash", "Get the number of fields in a hash.", "O(1)"),
		"HMGET":        group("hash", "Get the values of multiple hash fields.", "O(N)"),
		"HSTRLEN":      group("hash", "Get the length of a hash field's value.", "O(1)"),

		"SADD":        group("set", "Add one or more members to a set.", "O(N)"),
		"SREM":        group("set", "Remove one or more members from a set.", "O(N)"),
		"SISMEMBER":   group("set", "Determine if a value is a member of a set.", "O(1)"),
		"SMEMBERS":    group("set", "Get all members in a set.", "O(N)"),
		"SCARD":       group("set", "Get the number of members in a set.", "O(1)"),
		"SRANDMEMBER": group("set", "Get one or more random members from a set.", "O(N)"),
		"SPOP":        group("set", "Remove and return one or more random members from a set.", "O(N)"),
		"SINTER":      group("set", "Intersect multiple sets.", "O(N*M)"),
		"SUNION":      group("set", "Add multiple sets.", "O(N)"),
		"SDIFF":       group("set", "Subtract multiple sets.", "O(N)"),
		"SINTERSTORE": group("set", "Intersect multiple sets and store the result.", "O(N*M)"),
		"SUNIONSTORE": group("set", "Add multiple sets and store the result.", "O(N)"),
		"SDIFFSTORE":  group("set", "Subtract multiple sets and store the result.", "O(N)"),
	}
}

func makeFlagsArray(flags []string) resp.Value {
	vals := make([]resp.Value, len(flags))
	for i, f := range flags {
		vals[i] = resp.MakeSimpleString(f)
	}
	return resp.MakeArray(vals)
}

func makeInfoCmdArray(name string) []resp.Value {
	meta := commandRegistry[name]
	return []resp.Value{
		resp.MakeBulkString(strings.ToLower(name)),
		resp.MakeInteger(int64(meta.arity)),
		makeFlagsArray(meta.flags),
		resp.MakeInteger(int64(meta.firstKey)),
		resp.MakeInteger(int64(meta.lastKey)),
		resp.MakeInteger(int64(meta.step)),
	}
}

func getAllCommands() resp.Value {
	cmdArray := make([]resp.Value, 0, len(commandRegistry))
	for name := range commandRegistry {
		cmdArray = append(cmdArray, resp.MakeArray(makeInfoCmdArray(name)))
	}
	return resp.MakeArray(cmdArray)
}

// getCommandsDocs returns documentation for the requested commands, or
// every command if none are named.
// Format: [Name, [Summary, val, Since, val...], Name, [...]]
func getCommandsDocs(args []resp.Value) resp.Value {
	var targets []string

	if len(args) == 0 {
		targets = make([]string, 0, len(commandDocsRegistry))
		for name := range commandDocsRegistry {
			targets = append(targets, name)
		}
	} else {
		targets = make([]string, 0, len(args))
		for _, arg := range args {
			targets = append(targets, strings.ToUpper(string(arg.String)))
		}
	}

	result := make([]resp.Value, 0, len(targets)*2)

	for _, name := range targets {
		doc, ok := commandDocsRegistry[name]
		if !ok {
			continue
		}

		result = append(result, resp.MakeBulkString(strings.ToLower(name)))

		props := []resp.Value{
			resp.MakeBulkString("summary"),
			resp.MakeBulkString(doc.summary),
			resp.MakeBulkString("since"),
			resp.MakeBulkString(doc.since),
			resp.MakeBulkString("group"),
			resp.MakeBulkString(doc.group),
			resp.MakeBulkString("complexity"),
			resp.MakeBulkString(doc.complexity),
		}

		result = append(result, resp.MakeArray(props))
	}

	return resp.MakeArray(result)
}
