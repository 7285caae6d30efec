package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout ограничивает запрос общим дедлайном (timeouts.service из
// конфигурации): контекст с дедлайном доходит до операций хранилища, и
// просроченный запрос падает целиком, без частичных записей. Уже
// установленный дедлайн уважается; значение <=0 делает мидлвар no-op.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Уважаем дедлайн, выставленный выше по стеку.
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
