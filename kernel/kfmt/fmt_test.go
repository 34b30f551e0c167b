package kfmt

import (
	"bytes"
	"testing"
)

func TestFprintf(t *testing.T) {
	specs := []struct {
		format string
		args   []interface{}
		exp    string
	}{
		{"no verbs", nil, "no verbs"},
		{"literal %%", nil, "literal %"},
		{"%s and %s", []interface{}{"foo", []byte("bar")}, "foo and bar"},
		{"%8s|", []interface{}{"pad"}, "     pad|"},
		{"%d", []interface{}{42}, "42"},
		{"%d", []interface{}{-128}, "-128"},
		{"%d", []interface{}{uint64(18446744073709551615)}, "18446744073709551615"},
		{"%5d|", []interface{}{123}, "  123|"},
		{"%x", []interface{}{uintptr(0xbadf00d)}, "badf00d"},
		{"%8x", []interface{}{uint32(0xf00)}, "00000f00"},
		{"%o", []interface{}{uint8(0755 & 0xff)}, "355"},
		{"%t-%t", []interface{}{true, false}, "true-false"},
		{"%d", []interface{}{int8(-1)}, "-1"},
		{"%d", []interface{}{int16(-300)}, "-300"},
		{"%d", []interface{}{int32(1 << 20)}, "1048576"},
		{"%d", []interface{}{int64(-1 << 40)}, "-1099511627776"},
		{"%d", []interface{}{uint16(1234)}, "1234"},
		{"%d", []interface{}{uint(5678)}, "5678"},
		// error tags
		{"%d", nil, "(MISSING)"},
		{"%v", []interface{}{1}, "%!(NOVERB)%!(EXTRA)"},
		{"%", nil, "%!(NOVERB)"},
		{"%d", []interface{}{"not a number"}, "%!(WRONGTYPE)"},
		{"%s", []interface{}{42}, "%!(WRONGTYPE)"},
		{"%t", []interface{}{42}, "%!(WRONGTYPE)"},
		{"ok", []interface{}{1, 2}, "ok%!(EXTRA)%!(EXTRA)"},
	}

	var buf bytes.Buffer
	for specIndex, spec := range specs {
		buf.Reset()
		Fprintf(&buf, spec.format, spec.args...)

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected output %q; got %q", specIndex, spec.exp, got)
		}
	}
}

func TestPrintfBeforeAndAfterSinkRegistration(t *testing.T) {
	defer func() {
		outputSink = nil
		earlyPrintBuffer.rIndex = 0
		earlyPrintBuffer.wIndex = 0
	}()

	outputSink = nil
	earlyPrintBuffer.rIndex = 0
	earlyPrintBuffer.wIndex = 0

	// Output emitted before a sink is registered lands in the early
	// buffer and gets replayed once the sink appears.
	Printf("early: %d\n", 1)

	var buf bytes.Buffer
	SetOutputSink(&buf)
	Printf("late: %d\n", 2)

	if exp, got := "early: 1\nlate: 2\n", buf.String(); got != exp {
		t.Fatalf("expected sink to contain %q; got %q", exp, got)
	}
}
