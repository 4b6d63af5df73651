package resp_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nightkv/nightkv/internal/resp"
)

func TestReadInt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{name: "Valid positive", input: ":1000\r\n", want: 1000},
		{name: "Valid positive with +", input: ":+1230\r\n", want: 1230},
		{name: "Valid negative", input: ":-15\r\n", want: -15},
		{name: "Valid zero", input: ":0\r\n", want: 0},
		{name: "Invalid ending", input: ":1000\n", wantErr: resp.ErrInvalidEnding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resp.NewReader(strings.NewReader(tt.input))

			val, err := r.Read()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Read() expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Read() unexpected error %v", err)
			}
			if val.Type != resp.TypeInteger {
				t.Errorf("Read() type = %c, want %c", val.Type, resp.TypeInteger)
			}
			if val.Integer != tt.want {
				t.Errorf("Read() integer = %v, want %v", val.Integer, tt.want)
			}
		})
	}
}

func TestReadBulkString(t *testing.T) {
	r := resp.NewReader(strings.NewReader("$3\r\nbar\r\n"))
	val, err := r.Read()
	if err != nil {
		t.Fatalf("Read() unexpected error %v", err)
	}
	if val.Type != resp.TypeBulkString || string(val.String) != "bar" {
		t.Errorf("Read() = %+v, want BulkString \"bar\"", val)
	}
}

func TestReadNullBulkString(t *testing.T) {
	r := resp.NewReader(strings.NewReader("$-1\r\n"))
	val, err := r.Read()
	if err != nil {
		t.Fatalf("Read() unexpected error %v", err)
	}
	if val.Type != resp.TypeBulkString || !val.IsNull {
		t.Errorf("Read() = %+v, want null BulkString", val)
	}
}

func TestReadArray(t *testing.T) {
	r := resp.NewReader(strings.NewReader("*2\r\n$3\r\nSET\r\n:7\r\n"))
	val, err := r.Read()
	if err != nil {
		t.Fatalf("Read() unexpected error %v", err)
	}
	if val.Type != resp.TypeArray || len(val.Array) != 2 {
		t.Fatalf("Read() = %+v, want 2-element array", val)
	}
	if string(val.Array[0].String) != "SET" {
		t.Errorf("Array[0] = %+v, want BulkString SET", val.Array[0])
	}
	if val.Array[1].Integer != 7 {
		t.Errorf("Array[1] = %+v, want Integer 7", val.Array[1])
	}
}

func TestReadNestedArray(t *testing.T) {
	r := resp.NewReader(strings.NewReader("*1\r\n*1\r\n+inner\r\n"))
	val, err := r.Read()
	if err != nil {
		t.Fatalf("Read() unexpected error %v", err)
	}
	inner := val.Array[0]
	if inner.Type != resp.TypeArray || string(inner.Array[0].String) != "inner" {
		t.Fatalf("Read() nested = %+v", val)
	}
}

// TestReadHandlesSplitFrames feeds a command byte-by-byte, mirroring how the
// event loop's non-blocking reads can deliver a frame across many chunks.
func TestReadHandlesSplitFrames(t *testing.T) {
	full := "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"
	p := resp.NewParser()
	for i := 0; i < len(full); i++ {
		p.Feed([]byte{full[i]})
		if v, ok, err := p.Next(); err != nil {
			t.Fatalf("Next() unexpected error %v", err)
		} else if ok {
			if i != len(full)-1 {
				t.Fatalf("frame completed early at byte %d", i)
			}
			if len(v.Array) != 2 || string(v.Array[0].String) != "GET" {
				t.Fatalf("Next() = %+v", v)
			}
		}
	}
}

// TestScenarioGetSetMissing mirrors the literal SET/GET/GET-missing exchange:
// SET foo bar -> +OK, GET foo -> $3\r\nbar\r\n, GET missing -> $-1\r\n.
func TestScenarioGetSetMissing(t *testing.T) {
	r := resp.NewReader(strings.NewReader("+OK\r\n$3\r\nbar\r\n$-1\r\n"))

	ok, err := r.Read()
	if err != nil || ok.Type != resp.TypeSimpleString || string(ok.String) != "OK" {
		t.Fatalf("first Read() = %+v, err %v", ok, err)
	}

	bar, err := r.Read()
	if err != nil || bar.Type != resp.TypeBulkString || string(bar.String) != "bar" {
		t.Fatalf("second Read() = %+v, err %v", bar, err)
	}

	missing, err := r.Read()
	if err != nil || missing.Type != resp.TypeBulkString || !missing.IsNull {
		t.Fatalf("third Read() = %+v, err %v", missing, err)
	}
}

func TestParserProtocolError(t *testing.T) {
	p := resp.NewParser()
	p.Feed([]byte("$3\r\nbarXX\r\n"))
	if _, _, err := p.Next(); !errors.Is(err, resp.ErrProtocol) {
		t.Fatalf("Next() error = %v, want ErrProtocol", err)
	}
}
