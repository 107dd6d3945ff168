package sl

import (
	"log/slog"
	"strings"
)

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func Module(mod string) slog.Attr {
	return slog.String("mod", mod)
}

// Secret logs only the edges of a sensitive value.
func Secret(key, value string) slog.Attr {
	return slog.String(key, mask(value))
}

// Step is the common attribute for IVR step names.
func Step[T ~string](step T) slog.Attr {
	return slog.String("step", string(step))
}

func CallSid(callSid string) slog.Attr {
	return slog.String("call_sid", callSid)
}

func mask(value string) string {
	n := len(value)
	switch {
	case n == 0:
		return ""
	case n <= 4:
		return strings.Repeat("*", n)
	case n <= 8:
		return strings.Repeat("*", n-2) + value[n-2:]
	default:
		return value[:2] + strings.Repeat("*", n-6) + value[n-4:]
	}
}
