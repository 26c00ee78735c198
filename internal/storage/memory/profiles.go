// Package memory реализует хранилище профилей в памяти процесса.
// Профили хранятся в упорядоченном списке, поиск выполняется линейным проходом.
// Все методы возвращают копии, поэтому вызывающий код не может изменить
// сохранённые записи в обход хранилища.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/magabrotheeeer/identity-mock/internal/models"
)

// ErrNotFound возвращается, когда профиль с указанной почтой отсутствует.
var ErrNotFound = errors.New("profile not found")

// ProfileStorage список профилей, общий для всех вызывающих в рамках процесса.
type ProfileStorage struct {
	mu       sync.RWMutex
	profiles []models.UserProfile
}

// New создаёт пустое хранилище профилей.
func New() *ProfileStorage {
	return &ProfileStorage{}
}

// Append добавляет профиль в конец списка. Уникальность почты здесь не проверяется.
func (s *ProfileStorage) Append(ctx context.Context, profile models.UserProfile) error {
	const op = "storage.memory.Append"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, profile.Clone())
	return nil
}

// FindByEmail возвращает первый профиль с совпадающей почтой.
func (s *ProfileStorage) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	const op = "storage.memory.FindByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.profiles {
		if s.profiles[i].Email == email {
			p := s.profiles[i].Clone()
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
}

// FindByCredentials возвращает первый профиль, у которого совпадают и почта, и пароль.
func (s *ProfileStorage) FindByCredentials(ctx context.Context, email, password string) (*models.UserProfile, error) {
	const op = "storage.memory.FindByCredentials"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.profiles {
		if s.profiles[i].Email == email && s.profiles[i].Password == password {
			p := s.profiles[i].Clone()
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
}

// Replace заменяет первый профиль с той же почтой целиком.
func (s *ProfileStorage) Replace(ctx context.Context, profile models.UserProfile) error {
	const op = "storage.memory.Replace"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.profiles {
		if s.profiles[i].Email == profile.Email {
			s.profiles[i] = profile.Clone()
			return nil
		}
	}
	return fmt.Errorf("%s: %w", op, ErrNotFound)
}

// Exists сообщает, есть ли профиль с указанной почтой.
func (s *ProfileStorage) Exists(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count возвращает количество записей в списке.
func (s *ProfileStorage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// List возвращает копию всего списка в порядке добавления.
func (s *ProfileStorage) List() []models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	return out
}

// Reset очищает список. Используется в тестах.
func (s *ProfileStorage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = nil
}
