// Package session хранит токен доступа и текущий профиль в хранилище сессии.
//
// Каждое значение записывается в виде JSON-конверта с номером версии, поэтому
// отсутствие значения, повреждённые данные и неизвестный формат различимы.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/identity-mock/internal/cache"
	"github.com/magabrotheeeer/identity-mock/internal/models"
)

const (
	// TokenKey ключ токена доступа в хранилище сессии.
	TokenKey = "accessToken"
	// ProfileKey ключ текущего профиля в хранилище сессии.
	ProfileKey = "user_profile"

	// Version текущая версия формата записей.
	Version = 1
)

var (
	// ErrCorruptSession значение в хранилище не удалось разобрать.
	ErrCorruptSession = errors.New("corrupt session record")
	// ErrUnsupportedVersion запись сохранена в неизвестной версии формата.
	ErrUnsupportedVersion = errors.New("unsupported session record version")
)

type tokenRecord struct {
	Version int    `json:"version"`
	Token   string `json:"token"`
}

type profileRecord struct {
	Version int                 `json:"version"`
	Profile *models.UserProfile `json:"profile"`
}

// Mirror типизированная обёртка над хранилищем сессии.
type Mirror struct {
	storage cache.Storage
}

// New создаёт Mirror поверх указанного хранилища.
func New(storage cache.Storage) *Mirror {
	return &Mirror{storage: storage}
}

// SetToken сохраняет токен доступа.
func (m *Mirror) SetToken(ctx context.Context, token string) error {
	const op = "session.SetToken"
	return m.put(ctx, op, TokenKey, tokenRecord{Version: Version, Token: token})
}

// Token возвращает сохранённый токен. found = false, если токена нет.
func (m *Mirror) Token(ctx context.Context) (token string, found bool, err error) {
	const op = "session.Token"
	var rec tokenRecord
	found, err = m.get(ctx, op, TokenKey, &rec, func() int { return rec.Version })
	if err != nil || !found {
		return "", false, err
	}
	if rec.Token == "" {
		return "", false, fmt.Errorf("%s: %w", op, ErrCorruptSession)
	}
	return rec.Token, true, nil
}

// HasToken сообщает, есть ли в сессии корректный токен.
func (m *Mirror) HasToken(ctx context.Context) (bool, error) {
	_, found, err := m.Token(ctx)
	return found, err
}

// SetProfile сохраняет текущий профиль.
func (m *Mirror) SetProfile(ctx context.Context, profile models.UserProfile) error {
	const op = "session.SetProfile"
	return m.put(ctx, op, ProfileKey, profileRecord{Version: Version, Profile: &profile})
}

// Profile возвращает сохранённый профиль или nil, если его нет.
func (m *Mirror) Profile(ctx context.Context) (*models.UserProfile, error) {
	const op = "session.Profile"
	var rec profileRecord
	found, err := m.get(ctx, op, ProfileKey, &rec, func() int { return rec.Version })
	if err != nil || !found {
		return nil, err
	}
	if rec.Profile == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrCorruptSession)
	}
	return rec.Profile, nil
}

// Clear удаляет все значения сессии.
func (m *Mirror) Clear(ctx context.Context) error {
	const op = "session.Clear"
	if err := m.storage.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Ping проверяет доступность хранилища сессии.
func (m *Mirror) Ping(ctx context.Context) error {
	return m.storage.Ping(ctx)
}

func (m *Mirror) put(ctx context.Context, op, key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.storage.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Mirror) get(ctx context.Context, op, key string, dest any, version func() int) (bool, error) {
	raw, found, err := m.storage.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("%s: %w: %v", op, ErrCorruptSession, err)
	}
	if v := version(); v != Version {
		return false, fmt.Errorf("%s: %w: %d", op, ErrUnsupportedVersion, v)
	}
	return true, nil
}
