// Package middleware содержит HTTP middleware магазина luxedropship.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const profileIDKey contextKey = "profileID"

const (
	profileCookieName = "profile"
	profileCookieTTL  = 365 * 24 * time.Hour
)

// ProfileMiddleware привязывает запрос к профилю браузера по подписанному cookie.
// Профиль хранит текущего пользователя и корзину.
type ProfileMiddleware struct {
	secretKey []byte
}

// NewProfileMiddleware создаёт ProfileMiddleware. Пустой секрет заменяется
// случайным ключом, и профили не переживают перезапуск процесса.
func NewProfileMiddleware(secret string) *ProfileMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &ProfileMiddleware{
		secretKey: key,
	}
}

// Middleware читает идентификатор профиля из cookie и добавляет его в контекст
// запроса. Если cookie нет или подпись неверна, создаётся новый профиль.
func (p *ProfileMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profileID := ""
		if cookie, err := r.Cookie(profileCookieName); err == nil {
			if id, ok := p.parseCookie(cookie.Value); ok {
				profileID = id
			}
		}

		if profileID == "" {
			profileID = uuid.NewString()
			p.SetProfileCookie(w, profileID)
		}

		ctx := context.WithValue(r.Context(), profileIDKey, profileID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetProfileCookie устанавливает cookie профиля с указанным идентификатором.
func (p *ProfileMiddleware) SetProfileCookie(w http.ResponseWriter, profileID string) {
	cookie := &http.Cookie{
		Name:     profileCookieName,
		Value:    p.sign(profileID),
		Path:     "/",
		Expires:  time.Now().Add(profileCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

func (p *ProfileMiddleware) sign(profileID string) string {
	mac := hmac.New(sha256.New, p.secretKey)
	mac.Write([]byte(profileID))
	return profileID + "." + hex.EncodeToString(mac.Sum(nil))
}

func (p *ProfileMiddleware) parseCookie(cookieValue string) (string, bool) {
	id, signature, found := strings.Cut(cookieValue, ".")
	if !found || id == "" {
		return "", false
	}

	_, expected, _ := strings.Cut(p.sign(id), ".")
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// GetProfileIDFromContext извлекает идентификатор профиля из контекста запроса.
func GetProfileIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(profileIDKey).(string)
	return id, ok && id != ""
}

// AdminChecker проверяет, вошёл ли в профиль администратор.
type AdminChecker func(ctx context.Context, profileID string) (bool, error)

// RequireAdmin пропускает запрос, только если текущий пользователь профиля
// является администратором. Роль перечитывается при каждом запросе.
func RequireAdmin(isAdmin AdminChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profileID, ok := GetProfileIDFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			admin, err := isAdmin(r.Context(), profileID)
			if err != nil {
				logger.Error("check admin role", zap.Error(err), zap.String("profile_id", profileID))
				writeError(w, http.StatusInternalServerError, "internal_error")
				return
			}
			if !admin {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": reason})
}
