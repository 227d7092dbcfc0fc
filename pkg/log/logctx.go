// log прокладывает логгер запроса (*slog.Logger) через context.Context:
// HTTP-мидлвары кладут его, обработчики и исходящий транспорт достают.
package log

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// Into сохраняет l в ctx. nil не сохраняется.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return ctx
	}

	return context.WithValue(ctx, loggerKey{}, l)
}

// From возвращает логгер из ctx, а если его нет, slog.Default().
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}

	return slog.Default()
}

// With дополняет логгер контекста атрибутами и кладёт результат обратно.
func With(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}

	return Into(ctx, From(ctx).With(args...))
}
