package models

import "time"

// Записи, которые сервис хранит в credstore.
//
// Канонической является запись по ключу имени пользователя: она называет
// единственную действующую пару. Записи по ключам токенов — вторичные
// индексы; они привязаны к значениям самих токенов, обратных ссылок на
// "текущую пару" не несут и после вытеснения пары просто доживают свой TTL:
// их находки перестают совпадать с канонической записью.

// PairRecord — каноническая запись действующей пары, ключ — имя пользователя.
type PairRecord struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	IssuedAt         time.Time `json:"issued_at"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// AccessRecord — вторичный индекс по ключу access-токена.
type AccessRecord struct {
	Username     string    `json:"username"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// RefreshRecord — вторичный индекс по ключу refresh-токена.
type RefreshRecord struct {
	Username    string    `json:"username"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
