package key

import (
	"bytes"
	"testing"
)

func TestAssignRoundTrip(t *testing.T) {
	k := New([]byte("cats"))
	if k.Length() != 4 {
		t.Fatalf("Length() = %d, want 4", k.Length())
	}
	if got := k.CStr(); !bytes.Equal(got, []byte("cats")) {
		t.Fatalf("CStr() = %q, want %q", got, "cats")
	}
	syms := k.Symbols()
	if syms[len(syms)-1] != Terminator {
		t.Fatalf("last symbol = %d, want Terminator", syms[len(syms)-1])
	}
}

func TestInOutBias(t *testing.T) {
	for b := 0; b < 256; b++ {
		c := In(byte(b))
		if c < 1 || c > 256 {
			t.Fatalf("In(%d) = %d out of [1,256]", b, c)
		}
		if Out(c) != byte(b) {
			t.Fatalf("Out(In(%d)) = %d, want %d", b, Out(c), b)
		}
	}
}

func TestPushPop(t *testing.T) {
	k := New([]byte("ca"))
	k.Push(In('t'))
	if got := k.CStr(); !bytes.Equal(got, []byte("cat")) {
		t.Fatalf("after Push: CStr() = %q, want %q", got, "cat")
	}
	popped := k.Pop()
	if Out(popped) != 't' {
		t.Fatalf("Pop() = %d, want 't'", popped)
	}
	if got := k.CStr(); !bytes.Equal(got, []byte("ca")) {
		t.Fatalf("after Pop: CStr() = %q, want %q", got, "ca")
	}
}

func TestClear(t *testing.T) {
	k := New([]byte("xyz"))
	k.Clear()
	if k.Length() != 0 {
		t.Fatalf("Length() after Clear = %d, want 0", k.Length())
	}
	if got := k.CStr(); len(got) != 0 {
		t.Fatalf("CStr() after Clear = %q, want empty", got)
	}
}

func TestAssignSymbols(t *testing.T) {
	k := &Key{}
	k.AssignSymbols([]int32{In('g'), In('o')})
	if got := k.CStr(); !bytes.Equal(got, []byte("go")) {
		t.Fatalf("CStr() = %q, want %q", got, "go")
	}
}
