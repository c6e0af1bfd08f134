package interp

import (
	"strconv"
	"strings"

	"github.com/cb-lang/cb/internal/cbtype"
)

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// formatPrintf reimplements the printf-family format spec of §6.3:
// %d/%i, %lld (treated as %d with its trailing "ld" absorbed), %s,
// %c, %% (consumes no argument), an optional leading zero-pad flag
// and decimal width between '%' and the specifier, any unmatched or
// trailing '%' echoed literally, and excess arguments appended after
// the formatted string separated by spaces.
func formatPrintf(format string, args []cbtype.Value) string {
	var out strings.Builder
	argIndex := 0
	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			out.WriteByte(c)
			i++
			continue
		}
		specStart := i + 1
		j := specStart
		zeroPad := false
		if j < len(format) && format[j] == '0' {
			zeroPad = true
			j++
		}
		width := 0
		for j < len(format) && format[j] >= '0' && format[j] <= '9' {
			width = width*10 + int(format[j]-'0')
			j++
		}
		if j >= len(format) {
			out.WriteByte(c)
			i++
			continue
		}
		specifier := format[j]
		if specifier == '%' {
			out.WriteByte('%')
			i = j + 1
			continue
		}
		if argIndex >= len(args) {
			out.WriteByte(c)
			i++
			continue
		}
		arg := args[argIndex]
		switch specifier {
		case 'd', 'i':
			out.WriteString(formatIntSpec(argAsInt(arg), width, zeroPad))
		case 'l':
			if j+2 < len(format) && format[j+1] == 'l' && format[j+2] == 'd' {
				out.WriteString(formatIntSpec(argAsInt(arg), width, zeroPad))
				j += 2
			} else {
				out.WriteString(formatInt(argAsInt(arg)))
			}
		case 's':
			if arg.Tag == cbtype.String {
				out.WriteString(arg.Str)
			} else {
				out.WriteString(formatInt(argAsInt(arg)))
			}
		case 'c':
			if arg.Tag == cbtype.String && arg.Str != "" {
				out.WriteByte(arg.Str[0])
			} else {
				out.WriteRune(rune(argAsInt(arg)))
			}
		default:
			out.WriteByte('%')
			out.WriteByte(specifier)
		}
		argIndex++
		i = j + 1
	}
	for ; argIndex < len(args); argIndex++ {
		out.WriteByte(' ')
		arg := args[argIndex]
		if arg.Tag == cbtype.String {
			out.WriteString(arg.Str)
		} else {
			out.WriteString(formatInt(argAsInt(arg)))
		}
	}
	return out.String()
}

func argAsInt(v cbtype.Value) int64 {
	if v.Tag.IsFloat() {
		return int64(v.FloatVal)
	}
	return v.IntVal
}

// formatIntSpec renders v with an optional fixed width, zero-padded or
// space-padded, keeping a negative value's sign before any padding.
func formatIntSpec(v int64, width int, zeroPad bool) string {
	numStr := formatInt(v)
	if width <= 0 || len(numStr) >= width {
		return numStr
	}
	pad := width - len(numStr)
	if zeroPad {
		if v < 0 {
			return "-" + strings.Repeat("0", pad) + numStr[1:]
		}
		return strings.Repeat("0", pad) + numStr
	}
	return strings.Repeat(" ", pad) + numStr
}
