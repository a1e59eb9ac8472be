package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RolePublicSafety    Role = "PUBLIC_SAFETY"
	RoleCityAdmin       Role = "CITY_ADMIN"
	RoleServiceProvider Role = "SERVICE_PROVIDER"
	RoleSystemAdmin     Role = "SYSTEM_ADMIN"
	RoleCitizen         Role = "CITIZEN"
)

var dashboards = map[Role]string{
	RolePublicSafety:    "public-safety-dashboard",
	RoleCityAdmin:       "city-admin-dashboard",
	RoleServiceProvider: "service-provider-dashboard",
	RoleSystemAdmin:     "system-admin-dashboard",
	RoleCitizen:         "citizen-dashboard",
}

func (r Role) Valid() bool {
	_, ok := dashboards[r]
	return ok
}

// Dashboard возвращает экран, на который попадает роль после входа
func (r Role) Dashboard() string {
	return dashboards[r]
}

// названия ролей в форме входа для сотрудников
var roleAliases = map[string]Role{
	"PUBLIC_SAFETY_OFFICIAL": RolePublicSafety,
	"CITY_ADMINISTRATOR":     RoleCityAdmin,
}

// ParseRole принимает как PUBLIC_SAFETY, так и "Public Safety Official"
func ParseRole(s string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	if alias, ok := roleAliases[normalized]; ok {
		return alias, nil
	}
	r := Role(normalized)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Credentials - данные формы входа
type Credentials struct {
	Role     Role
	Login    string
	Password string
}
