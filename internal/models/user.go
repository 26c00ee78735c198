// Package models содержит доменную модель профиля пользователя и структуры
// запросов/ответов, которыми обмениваются хранилище идентичностей и HTTP-слой.
package models

import "time"

// DefaultRole роль, которая присваивается профилю при регистрации.
const DefaultRole = "user"

// UserProfile представляет одного зарегистрированного пользователя.
// Email служит уникальным ключом, пароль хранится в открытом виде.
type UserProfile struct {
	FullName  string     `json:"fullname"`                   // Полное имя
	Email     string     `json:"email" validate:"required"` // Электронная почта (уникальная)
	Password  string     `json:"password"`                   // Пароль без хэширования
	Address   string     `json:"address"`                    // Адрес
	Role      string     `json:"role"`                       // Роль пользователя, по умолчанию user
	AvatarURL string     `json:"avatarUrl,omitempty"`        // Ссылка на аватар (опционально)
	CreatedAt *time.Time `json:"createdAt,omitempty"`        // Дата создания (опционально)
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`        // Дата последнего изменения (опционально)
}

// Clone возвращает независимую копию профиля, включая временные метки.
func (p UserProfile) Clone() UserProfile {
	c := p
	if p.CreatedAt != nil {
		t := *p.CreatedAt
		c.CreatedAt = &t
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		c.UpdatedAt = &t
	}
	return c
}
