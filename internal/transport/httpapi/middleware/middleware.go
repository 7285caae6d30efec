// middleware содержит HTTP-мидлвары сервиса: Recover, RequestID, Logging,
// Timeout. Порядок подключения (внешний -> внутренний) задаёт router.
package middleware

import "net/http"

// Middleware — стандартная обёртка http.Handler.
type Middleware func(next http.Handler) http.Handler
