package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-token-service/internal/service"
	"github.com/pribylovaa/go-token-service/internal/transport/httpapi/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// Ops — дополнительные служебные маршруты (/livez, /healthz, /metrics),
	// регистрируются вне основного API; nil-значения пропускаются.
	Ops map[string]http.Handler
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(s *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := NewHandlers(s)

	// auth
	root.Post("/auth/register", h.Register)
	root.Post("/auth/login", h.Login)
	root.Post("/auth/refresh", h.Refresh)
	root.Post("/auth/validate", h.Validate)
	root.Post("/auth/revoke", h.Revoke)

	// служебные маршруты.
	for pattern, handler := range opts.Ops {
		if handler != nil {
			root.Method(http.MethodGet, pattern, handler)
		}
	}

	return root
}
