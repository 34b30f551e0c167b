// Package kfmt provides a minimal printf implementation that is safe to use
// before the kernel heap allocator is available. Output produced before a
// console has been registered is captured by a ring buffer and replayed once
// SetOutputSink is called.
package kfmt

import "io"

// numBufSize is large enough to format a 64-bit value in any supported base.
const numBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	// earlyPrintBuffer captures Printf output emitted before a sink is
	// registered.
	earlyPrintBuffer ringBuffer

	// outputSink is the io.Writer where Printf sends its output. While
	// nil, output is redirected to earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the target for calls to Printf to w and drains any
// output accumulated in the early print buffer to it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// Printf formats according to format and writes the result to the registered
// output sink. It supports a subset of the fmt.Printf verbs:
//
//	%s  string or byte slice
//	%o  integer, base 8
//	%d  integer, base 10
//	%x  integer, base 16 with lower-case letters
//	%t  boolean, "true" or "false"
//
// An optional decimal width may precede the verb. Strings and base-10 values
// shorter than the width are left-padded with spaces; base-8 and base-16
// values are left-padded with zeroes. Printf performs no memory allocations
// so it remains usable inside the allocator itself.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes the formatted output to w. A nil
// writer targets the early print buffer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	if w == nil {
		w = &earlyPrintBuffer
	}

	var (
		argIndex int
		ch       byte
		buf      [1]byte
	)

	for index := 0; index < len(format); {
		ch = format[index]
		if ch != '%' {
			// write a byte at a time; slicing the format string
			// would trigger an allocation.
			buf[0] = ch
			w.Write(buf[:])
			index++
			continue
		}

		// parse the optional width that precedes the verb
		index++
		width := 0
		for ; index < len(format) && format[index] >= '0' && format[index] <= '9'; index++ {
			width = (width * 10) + int(format[index]-'0')
		}

		if index == len(format) {
			w.Write(errNoVerb)
			break
		}

		verb := format[index]
		index++

		if verb == '%' {
			buf[0] = '%'
			w.Write(buf[:])
			continue
		}

		switch verb {
		case 'o', 'd', 'x', 's', 't':
			if argIndex >= len(args) {
				w.Write(errMissingArg)
				continue
			}
		default:
			w.Write(errNoVerb)
			continue
		}

		arg := args[argIndex]
		argIndex++

		switch verb {
		case 'o':
			fmtInt(w, arg, 8, width)
		case 'd':
			fmtInt(w, arg, 10, width)
		case 'x':
			fmtInt(w, arg, 16, width)
		case 's':
			fmtString(w, arg, width)
		case 't':
			fmtBool(w, arg)
		}
	}

	// Flag any unused args
	for ; argIndex < len(args); argIndex++ {
		w.Write(errExtraArg)
	}
}

// fmtBool writes a formatted version of boolean value v.
func fmtBool(w io.Writer, v interface{}) {
	bVal, isBool := v.(bool)
	if !isBool {
		w.Write(errWrongArgType)
		return
	}

	if bVal {
		w.Write(trueValue)
		return
	}
	w.Write(falseValue)
}

// fmtString writes a formatted version of string or []byte value v, applying
// the padding specified by width.
func fmtString(w io.Writer, v interface{}, width int) {
	var buf [1]byte

	switch sVal := v.(type) {
	case string:
		padWith(w, ' ', width-len(sVal))
		// converting the string to a byte slice would trigger an
		// allocation so the bytes are written one at a time.
		for i := 0; i < len(sVal); i++ {
			buf[0] = sVal[i]
			w.Write(buf[:])
		}
	case []byte:
		padWith(w, ' ', width-len(sVal))
		w.Write(sVal)
	default:
		w.Write(errWrongArgType)
	}
}

// padWith writes count bytes with value ch.
func padWith(w io.Writer, ch byte, count int) {
	var buf [1]byte

	buf[0] = ch
	for i := 0; i < count; i++ {
		w.Write(buf[:])
	}
}

// fmtInt writes a formatted version of v in the requested base, applying the
// padding specified by width. All built-in signed and unsigned integer types
// are supported.
func fmtInt(w io.Writer, v interface{}, base, width int) {
	var (
		uVal     uint64
		negative bool
		buf      [numBufSize]byte
	)

	switch iVal := v.(type) {
	case uint8:
		uVal = uint64(iVal)
	case uint16:
		uVal = uint64(iVal)
	case uint32:
		uVal = uint64(iVal)
	case uint64:
		uVal = iVal
	case uint:
		uVal = uint64(iVal)
	case uintptr:
		uVal = uint64(iVal)
	case int8:
		uVal, negative = abs(int64(iVal))
	case int16:
		uVal, negative = abs(int64(iVal))
	case int32:
		uVal, negative = abs(int64(iVal))
	case int64:
		uVal, negative = abs(iVal)
	case int:
		uVal, negative = abs(int64(iVal))
	default:
		w.Write(errWrongArgType)
		return
	}

	// render digits from the end of the buffer towards its start
	end := len(buf)
	index := end
	for {
		index--
		digit := byte(uVal % uint64(base))
		if digit < 10 {
			buf[index] = '0' + digit
		} else {
			buf[index] = 'a' + digit - 10
		}

		uVal /= uint64(base)
		if uVal == 0 {
			break
		}
	}

	if negative {
		index--
		buf[index] = '-'
	}

	padCh := byte(' ')
	if base != 10 {
		padCh = '0'
	}
	padWith(w, padCh, width-(end-index))

	w.Write(buf[index:end])
}

// abs returns the magnitude of v together with a flag indicating whether v
// was negative.
func abs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}
