// redact предоставляет утилиты безопасного редактирования чувствительных
// данных для логов (имена пользователей, токены, пароли).
package redact

// Username маскирует имя пользователя, оставляя первые два символа (по рунам).
//
// Примеры:
//
//	"hueter"  -> "hu***"
//	"ab"      -> "***"
//	""        -> "***"
func Username(s string) string {
	r := []rune(s)
	if len(r) > 2 {
		return string(r[:2]) + "***"
	}

	return "***"
}

// Token возвращает литерал-заглушку для токена в логах.
func Token() string { return "[REDACTED_TOKEN]" }

// Password возвращает литерал-заглушку для пароля в логах.
func Password() string { return "[REDACTED_PASSWORD]" }
