package server

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nightkv/nightkv/internal/keyspace"
	"github.com/nightkv/nightkv/internal/logger"
	"github.com/nightkv/nightkv/internal/resp"
)

// setupEngine creates a fresh engine with a clean keyspace for each test.
func setupEngine() *Engine {
	ks := keyspace.New(256)
	return NewEngine(ks, logger.New("debug", "console"))
}

// makeCommand constructs the argument slice Engine.Execute expects: the
// bulk strings following the command name, not the name itself.
func makeCommand(_ string, args ...string) []resp.Value {
	vals := make([]resp.Value, len(args))
	for i, arg := range args {
		vals[i] = resp.MakeBulkString(arg)
	}
	return vals
}

func TestPing(t *testing.T) {
	e := setupEngine()

	tests := []struct {
		name     string
		args     []string
		wantType byte
		wantStr  string
	}{
		{"Simple PING", []string{}, resp.TypeSimpleString, "PONG"},
		{"PING with message", []string{"Hello"}, resp.TypeBulkString, "Hello"},
		{"PING too many args", []string{"a", "b"}, resp.TypeError, string(resp.MakeErrorWrongNumberOfArguments("PING").String)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Execute("PING", makeCommand("PING", tt.args...))
			if res.Type != tt.wantType {
				t.Errorf("got type %v, want %v", res.Type, tt.wantType)
			}

			got := string(res.String)
			if got != tt.wantStr {
				t.Errorf("got %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestBasicSetGetDel(t *testing.T) {
	e := setupEngine()

	res := e.Execute("GET", makeCommand("GET", "mykey"))
	if !res.IsNull {
		t.Errorf("expected null for missing key, got %v", res.Type)
	}

	res = e.Execute("SET", makeCommand("SET", "mykey", "myvalue"))
	if string(res.String) != "OK" {
		t.Errorf("expected OK, got %v", res.String)
	}

	res = e.Execute("GET", makeCommand("GET", "mykey"))
	if string(res.String) != "myvalue" {
		t.Errorf("expected myvalue, got %s", res.String)
	}

	res = e.Execute("DEL", makeCommand("DEL", "mykey"))
	if res.Integer != 1 {
		t.Errorf("expected 1 deleted, got %d", res.Integer)
	}

	res = e.Execute("GET", makeCommand("GET", "mykey"))
	if !res.IsNull {
		t.Errorf("expected null after delete, got %v", res.Type)
	}
}

func TestSetNX_XX(t *testing.T) {
	e := setupEngine()

	res := e.Execute("SET", makeCommand("SET", "k1", "v1", "NX"))
	if string(res.String) != "OK" {
		t.Errorf("SET NX new key failed")
	}

	res = e.Execute("SET", makeCommand("SET", "k1", "v2", "NX"))
	if !res.IsNull {
		t.Errorf("SET NX existing key should return nil, got %v", res.Type)
	}
	val := e.Execute("GET", makeCommand("GET", "k1"))
	if string(val.String) != "v1" {
		t.Errorf("SET NX changed value despite failure")
	}

	res = e.Execute("SET", makeCommand("SET", "k2", "v2", "XX"))
	if !res.IsNull {
		t.Errorf("SET XX missing key should return nil, got %v", res.Type)
	}

	res = e.Execute("SET", makeCommand("SET", "k1", "v_updated", "XX"))
	if string(res.String) != "OK" {
		t.Errorf("SET XX existing key failed")
	}
	val = e.Execute("GET", makeCommand("GET", "k1"))
	if string(val.String) != "v_updated" {
		t.Errorf("SET XX failed to update value")
	}
}

func TestSetTTL(t *testing.T) {
	e := setupEngine()

	e.Execute("SET", makeCommand("SET", "k_ex", "val", "EX", "1"))

	ttl := e.Execute("TTL", makeCommand("TTL", "k_ex"))
	if ttl.Integer != 1 {
		t.Errorf("expected TTL 1, got %d", ttl.Integer)
	}

	time.Sleep(1100 * time.Millisecond)
	res := e.Execute("GET", makeCommand("GET", "k_ex"))
	if !res.IsNull {
		t.Errorf("key should have expired")
	}

	e.Execute("SET", makeCommand("SET", "k_px", "val", "PX", "100"))

	pttl := e.Execute("PTTL", makeCommand("PTTL", "k_px"))
	if pttl.Integer <= 0 || pttl.Integer > 100 {
		t.Errorf("expected PTTL ~100ms, got %d", pttl.Integer)
	}

	time.Sleep(150 * time.Millisecond)
	res = e.Execute("GET", makeCommand("GET", "k_px"))
	if !res.IsNull {
		t.Errorf("key should have expired (PX)")
	}
}

func TestSetKeepTTL(t *testing.T) {
	e := setupEngine()

	e.Execute("SET", makeCommand("SET", "k_keep", "v1", "EX", "100"))
	e.Execute("SET", makeCommand("SET", "k_keep", "v2", "KEEPTTL"))

	val := e.Execute("GET", makeCommand("GET", "k_keep"))
	if string(val.String) != "v2" {
		t.Errorf("KEEPTTL value not updated")
	}

	ttl := e.Execute("TTL", makeCommand("TTL", "k_keep"))
	if ttl.Integer < 95 || ttl.Integer > 100 {
		t.Errorf("KEEPTTL removed the expiration, got %d", ttl.Integer)
	}

	e.Execute("SET", makeCommand("SET", "k_new_keep", "v1", "KEEPTTL"))
	ttl = e.Execute("TTL", makeCommand("TTL", "k_new_keep"))
	if ttl.Integer != -1 {
		t.Errorf("KEEPTTL on new key should have -1 TTL, got %d", ttl.Integer)
	}
}

func TestSetTimestamps(t *testing.T) {
	e := setupEngine()

	future := time.Now().Add(2 * time.Second).Unix()
	futureStr := fmt.Sprintf("%d", future)

	e.Execute("SET", makeCommand("SET", "k_exat", "v", "EXAT", futureStr))

	ttl := e.Execute("TTL", makeCommand("TTL", "k_exat"))
	if ttl.Integer < 1 || ttl.Integer > 2 {
		t.Errorf("EXAT failed, expected ~2s TTL, got %d", ttl.Integer)
	}
}

func TestTTL_PTTL_Codes(t *testing.T) {
	e := setupEngine()

	res := e.Execute("TTL", makeCommand("TTL", "missing"))
	if res.Integer != -2 {
		t.Errorf("expected -2 for missing key, got %d", res.Integer)
	}

	e.Execute("SET", makeCommand("SET", "persistent", "val"))
	res = e.Execute("TTL", makeCommand("TTL", "persistent"))
	if res.Integer != -1 {
		t.Errorf("expected -1 for persistent key, got %d", res.Integer)
	}
	res = e.Execute("PTTL", makeCommand("PTTL", "persistent"))
	if res.Integer != -1 {
		t.Errorf("expected -1 for persistent key (PTTL), got %d", res.Integer)
	}
}

func TestSetSyntaxErrors(t *testing.T) {
	e := setupEngine()

	tests := []struct {
		name string
		args []string
	}{
		{"NX and XX together", []string{"k", "v", "NX", "XX"}},
		{"XX and NX together", []string{"k", "v", "XX", "NX"}},
		{"EX without value", []string{"k", "v", "EX"}},
		{"Double TTL (EX then PX)", []string{"k", "v", "EX", "10", "PX", "100"}},
		{"KEEPTTL with EX", []string{"k", "v", "KEEPTTL", "EX", "10"}},
		{"Unknown Argument", []string{"k", "v", "FOOBAR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Execute("SET", makeCommand("SET", tt.args...))
			if res.Type != resp.TypeError {
				t.Errorf("expected error, got %v", res.Type)
			}
			if !strings.Contains(string(res.String), "syntax error") {
				t.Errorf("expected a syntax error, got %q", res.String)
			}
		})
	}
}

func TestSetExNonInteger(t *testing.T) {
	e := setupEngine()

	res := e.Execute("SET", makeCommand("SET", "k", "v", "EX", "abc"))
	if res.Type != resp.TypeError {
		t.Errorf("expected error, got %v", res.Type)
	}
	if !strings.Contains(string(res.String), "not an integer") {
		t.Errorf("expected a not-an-integer error, got %q", res.String)
	}
}

func TestHashBasics(t *testing.T) {
	e := setupEngine()

	res := e.Execute("HSET", makeCommand("HSET", "h", "f1", "v1", "f2", "v2"))
	if res.Integer != 2 {
		t.Errorf("expected 2 new fields, got %d", res.Integer)
	}

	res = e.Execute("HGET", makeCommand("HGET", "h", "f1"))
	if string(res.String) != "v1" {
		t.Errorf("expected v1, got %q", res.String)
	}

	res = e.Execute("HLEN", makeCommand("HLEN", "h"))
	if res.Integer != 2 {
		t.Errorf("expected len 2, got %d", res.Integer)
	}

	res = e.Execute("HDEL", makeCommand("HDEL", "h", "f1"))
	if res.Integer != 1 {
		t.Errorf("expected 1 deleted, got %d", res.Integer)
	}
}

func TestSetAlgebra(t *testing.T) {
	e := setupEngine()

	e.Execute("SADD", makeCommand("SADD", "s1", "a", "b", "c"))
	e.Execute("SADD", makeCommand("SADD", "s2", "b", "c", "d"))

	res := e.Execute("SINTER", makeCommand("SINTER", "s1", "s2"))
	if len(res.Array) != 2 {
		t.Errorf("expected 2 common members, got %d", len(res.Array))
	}

	res = e.Execute("SDIFFSTORE", makeCommand("SDIFFSTORE", "dest", "s1", "s2"))
	if res.Integer != 1 {
		t.Errorf("expected 1 member in difference, got %d", res.Integer)
	}
}

func TestWrongType(t *testing.T) {
	e := setupEngine()

	e.Execute("SET", makeCommand("SET", "str", "v"))
	res := e.Execute("SADD", makeCommand("SADD", "str", "m"))
	if res.Type != resp.TypeError || !strings.Contains(string(res.String), "WRONGTYPE") {
		t.Errorf("expected WRONGTYPE error, got %q", res.String)
	}
}
