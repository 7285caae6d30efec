package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/go-token-service/internal/credstore"
	"github.com/pribylovaa/go-token-service/internal/models"
	"github.com/pribylovaa/go-token-service/internal/pkg/log"
	"github.com/pribylovaa/go-token-service/internal/pkg/redact"
)

// Префиксы ключей в плоском пространстве имён хранилища.
const (
	pairKeyPrefix    = "u:"
	accessKeyPrefix  = "at:"
	refreshKeyPrefix = "rt:"
)

func pairKey(username string) string { return pairKeyPrefix + username }
func accessKey(token string) string  { return accessKeyPrefix + token }
func refreshKey(token string) string { return refreshKeyPrefix + token }

// generateToken возвращает непрозрачный токен: 32 байта из crypto/rand
// в base64 RawURL (256 бит энтропии).
func generateToken() (string, error) {
	const op = "service.token.generateToken"

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// VerifyResult — результат проверки access-токена.
// Невалидный токен — не ошибка, а штатный исход: Valid=false.
type VerifyResult struct {
	Valid     bool
	Username  string
	ExpiresAt time.Time
}

// Issue выпускает новую пару учётных данных для username.
//
// Предусловие: username уже аутентифицирован (пароль проверен) либо только
// что зарегистрирован. Пишутся три записи: два индекса по значениям токенов
// и, последней, каноническая запись по имени пользователя — её перезапись и
// есть вытеснение прежней пары. Старые индексы никто не разыскивает и не
// удаляет: они доживают свой TTL, но каноническая запись с ними уже не
// совпадает, поэтому их находки невалидны.
func (s *Service) Issue(ctx context.Context, username string) (*models.CredentialPair, error) {
	const op = "service.token.Issue"

	lg := log.From(ctx)

	accessToken, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	pair := &models.CredentialPair{
		Username:         username,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		IssuedAt:         now,
		AccessExpiresAt:  now.Add(s.cfg.AccessTokenTTL),
		RefreshExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
	}

	accessValue, err := json.Marshal(models.AccessRecord{
		Username:     username,
		RefreshToken: refreshToken,
		ExpiresAt:    pair.AccessExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshValue, err := json.Marshal(models.RefreshRecord{
		Username:    username,
		AccessToken: accessToken,
		ExpiresAt:   pair.RefreshExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pairValue, err := json.Marshal(models.PairRecord{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		IssuedAt:         pair.IssuedAt,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.creds.Put(ctx, accessKey(accessToken), accessValue, s.cfg.AccessTokenTTL); err != nil {
		lg.Error("access_put_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.creds.Put(ctx, refreshKey(refreshToken), refreshValue, s.cfg.RefreshTokenTTL); err != nil {
		// Свежие индексы никому не известны — подчищаем и выходим.
		_ = s.creds.Delete(ctx, accessKey(accessToken))

		lg.Error("refresh_put_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Точка фиксации: перезапись канонической записи вытесняет прежнюю пару.
	if err := s.creds.Put(ctx, pairKey(username), pairValue, s.cfg.RefreshTokenTTL); err != nil {
		_ = s.creds.Delete(ctx, accessKey(accessToken))
		_ = s.creds.Delete(ctx, refreshKey(refreshToken))

		lg.Error("pair_put_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

// Verify проверяет access-токен: существует, не истёк и совпадает с
// канонической записью владельца (т.е. не вытеснен более свежей парой).
//
// Чистое чтение: TTL записей не продлевается (анти-sliding-expiry),
// состояние хранилища не меняется. Отсутствующий/истёкший/вытесненный
// токен — штатный исход Valid=false, а не ошибка; ошибкой являются только
// сбои хранилища.
func (s *Service) Verify(ctx context.Context, accessToken string) (VerifyResult, error) {
	const op = "service.token.Verify"

	value, err := s.creds.Get(ctx, accessKey(accessToken))
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return VerifyResult{Valid: false}, nil
		}

		return VerifyResult{}, fmt.Errorf("%s: %w", op, err)
	}

	var rec models.AccessRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return VerifyResult{}, fmt.Errorf("%s: %w", op, err)
	}

	pairValue, err := s.creds.Get(ctx, pairKey(rec.Username))
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return VerifyResult{Valid: false}, nil
		}

		return VerifyResult{}, fmt.Errorf("%s: %w", op, err)
	}

	var cur models.PairRecord
	if err := json.Unmarshal(pairValue, &cur); err != nil {
		return VerifyResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if subtle.ConstantTimeCompare([]byte(cur.AccessToken), []byte(accessToken)) != 1 {
		// Индекс пережил вытеснение своей пары.
		return VerifyResult{Valid: false}, nil
	}

	return VerifyResult{
		Valid:     true,
		Username:  rec.Username,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Rotate валидирует предъявленную пару, атомарно инвалидирует её и выпускает
// новую. Единственное место, где старое и новое состояние сосуществуют.
//
// Шаги:
//  1. чтение refresh-записи (отсутствие -> ErrInvalidRefresh);
//  2. сверка владельца и парного access-токена (несовпадение -> ErrTokenMismatch);
//  3. сверка с канонической записью владельца: вытесненная пара ротации не
//     подлежит, даже если её индексы ещё доживают TTL (-> ErrInvalidRefresh);
//  4. CompareAndDelete обеих индексных записей с прочитанными значениями;
//     проигрыш на живой записи -> ErrConcurrentRotation, новая пара не
//     выпускается;
//  5. выпуск новой пары (перезаписывает каноническую запись).
//
// Гонку конкурентных ротаций с одной и той же stale-парой выигрывает ровно
// один вызов: CompareAndDelete refresh-записи срабатывает единожды.
func (s *Service) Rotate(ctx context.Context, oldAccessToken, oldRefreshToken, username string) (*models.CredentialPair, error) {
	const op = "service.token.Rotate"

	lg := log.From(ctx)

	refreshValue, err := s.creds.Get(ctx, refreshKey(oldRefreshToken))
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefresh)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rec models.RefreshRecord
	if err := json.Unmarshal(refreshValue, &rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Запись могла пережить свой срок только при рассинхроне TTL хранилища;
	// явный срок сверяем так же, как всё остальное.
	if !time.Now().UTC().Before(rec.ExpiresAt) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefresh)
	}

	// Обе сверки считаем до ветвления: наружу уходит один сигнал, без
	// раскрытия того, какое именно поле не совпало.
	usernameOK := subtle.ConstantTimeCompare([]byte(rec.Username), []byte(username)) == 1
	accessOK := subtle.ConstantTimeCompare([]byte(rec.AccessToken), []byte(oldAccessToken)) == 1
	if !usernameOK || !accessOK {
		lg.Warn("rotation_token_mismatch",
			slog.String("op", op),
			slog.String("username", redact.Username(username)),
			slog.String("token", redact.Token()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrTokenMismatch)
	}

	// Ротация доступна только действующей паре. Индексы вытесненной пары
	// доживают свой TTL, но каноническая запись её уже не называет; такой
	// refresh мёртв наравне с истёкшим.
	pairValue, err := s.creds.Get(ctx, pairKey(username))
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefresh)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cur models.PairRecord
	if err := json.Unmarshal(pairValue, &cur); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if subtle.ConstantTimeCompare([]byte(cur.RefreshToken), []byte(oldRefreshToken)) != 1 {
		lg.Warn("rotation_superseded_pair",
			slog.String("op", op),
			slog.String("username", redact.Username(username)),
			slog.String("token", redact.Token()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefresh)
	}

	// Выбор победителя: refresh-запись удаляет ровно один вызывающий.
	deleted, err := s.creds.CompareAndDelete(ctx, refreshKey(oldRefreshToken), refreshValue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !deleted {
		lg.Warn("rotation_lost_race",
			slog.String("op", op),
			slog.String("username", redact.Username(username)),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrConcurrentRotation)
	}

	// Access-индекс живёт меньше refresh-индекса и мог истечь штатно;
	// отсутствие при чтении равносильно уже выполненному удалению.
	accessValue, err := s.creds.Get(ctx, accessKey(oldAccessToken))
	if err != nil && !errors.Is(err, credstore.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err == nil {
		deleted, err := s.creds.CompareAndDelete(ctx, accessKey(oldAccessToken), accessValue)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if !deleted {
			lg.Warn("rotation_lost_race",
				slog.String("op", op),
				slog.String("username", redact.Username(username)),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrConcurrentRotation)
		}
	}

	return s.Issue(ctx, username)
}

// Revoke отзывает пару по refresh-токену (logout): удаляет оба индекса и,
// если каноническая запись всё ещё называет эту пару, её тоже.
// Отсутствующий или уже отозванный токен -> ErrInvalidRefresh.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	const op = "service.token.Revoke"

	refreshValue, err := s.creds.Get(ctx, refreshKey(refreshToken))
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidRefresh)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	var rec models.RefreshRecord
	if err := json.Unmarshal(refreshValue, &rec); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	deleted, err := s.creds.CompareAndDelete(ctx, refreshKey(refreshToken), refreshValue)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !deleted {
		return fmt.Errorf("%s: %w", op, ErrInvalidRefresh)
	}

	if err := s.creds.Delete(ctx, accessKey(rec.AccessToken)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Каноническую запись трогаем, только если она называет именно эту пару:
	// вытесненная пара не должна убивать сессию-преемника.
	pairValue, err := s.creds.Get(ctx, pairKey(rec.Username))
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	var cur models.PairRecord
	if err := json.Unmarshal(pairValue, &cur); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cur.RefreshToken == refreshToken {
		if _, err := s.creds.CompareAndDelete(ctx, pairKey(rec.Username), pairValue); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}
