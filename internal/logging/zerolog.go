package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts zerolog.Logger to Logger.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

// New builds a JSON logger writing to w at the named level. Unknown level
// names fall back to info.
func New(w io.Writer, level string) *ZerologLogger {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return NewZerologLogger(zerolog.New(w).Level(lvl).With().Timestamp().Logger())
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.log(z.l.Debug(), ctx, msg, args)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.log(z.l.Info(), ctx, msg, args)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.log(z.l.Warn(), ctx, msg, args)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.log(z.l.Error(), ctx, msg, args)
}

func (z *ZerologLogger) With(args ...any) Logger {
	return &ZerologLogger{l: z.l.With().Fields(normalize(args)).Logger()}
}

func (z *ZerologLogger) log(e *zerolog.Event, ctx context.Context, msg string, args []any) {
	// disabled levels return a nil event
	if e == nil {
		return
	}
	if ctx != nil {
		e = e.Ctx(ctx)
	}
	e.Fields(normalize(args)).Msg(msg)
}

// normalize turns error values into strings and drops a dangling key so
// zerolog does not receive an odd-length pair list.
func normalize(args []any) []any {
	if len(args)%2 == 1 {
		args = args[:len(args)-1]
	}
	out := make([]any, len(args))
	for i, a := range args {
		if err, ok := a.(error); ok && i%2 == 1 {
			out[i] = err.Error()
			continue
		}
		out[i] = a
	}
	return out
}
