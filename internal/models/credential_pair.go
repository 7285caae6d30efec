package models

import "time"

// CredentialPair — пара учётных данных, выдаваемая при регистрации,
// логине и ротации.
//
// Описание:
//   - AccessToken — короткоживущий непрозрачный идентификатор (256 бит
//     случайности), предъявляется при каждом авторизованном запросе;
//   - RefreshToken — долгоживущий непрозрачный идентификатор, используется
//     только для ротации пары;
//   - IssuedAt — момент выпуска (UTC);
//   - AccessExpiresAt / RefreshExpiresAt — моменты истечения (UTC).
type CredentialPair struct {
	// Username — владелец пары.
	Username string
	// AccessToken — непрозрачный токен доступа.
	AccessToken string
	// RefreshToken — непрозрачный токен обновления.
	RefreshToken string
	// IssuedAt — время выпуска пары (UTC).
	IssuedAt time.Time
	// AccessExpiresAt — время истечения access-токена (UTC).
	AccessExpiresAt time.Time
	// RefreshExpiresAt — время истечения refresh-токена (UTC).
	RefreshExpiresAt time.Time
}
