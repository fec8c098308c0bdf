package models

// Profile удалённый профиль пользователя.
type Profile struct {
	UserID            string `json:"user_id"`
	Name              string `json:"name"`
	HasSeenOnboarding bool   `json:"has_seen_onboarding"`
}

// Role роль пользователя: владелец питомца или ветеринар.
type Role string

const (
	// RoleTutor владелец питомца.
	RoleTutor Role = "tutor"
	// RoleVet ветеринар.
	RoleVet Role = "vet"
)

// Valid проверяет, что роль одна из известных.
func (r Role) Valid() bool {
	return r == RoleTutor || r == RoleVet
}
