package redact

// Username маскирует имя пользователя для логов: первые два символа + "***".
func Username(s string) string {
	if len(s) > 2 {
		return s[:2] + "***"
	}

	return "***"
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
