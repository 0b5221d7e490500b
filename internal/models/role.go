package models

import "fmt"

// Role представляет роль пользователя системы.
// Тегированный вариант вместо сравнения строк: новые роли добавляются
// в ParseRole и покрываются компилятором через switch.
type Role string

const (
	RoleGuard      Role = "guard"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// ParseRole converts a raw string into a Role.
// Unknown values are an error, never silently accepted.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGuard, RoleSupervisor, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}
