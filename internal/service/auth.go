package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"os"

	"github.com/shenikar/incident_board/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// CredentialVerifier проверяет учетные данные и возвращает подтвержденную роль
type CredentialVerifier interface {
	Verify(ctx context.Context, creds models.Credentials) (models.Role, error)
}

// CredentialEntry - строка таблицы учетных данных
type CredentialEntry struct {
	Role     models.Role `yaml:"role"`
	Login    string      `yaml:"login"`
	Password string      `yaml:"password"`
}

// DefaultCredentials - демонстрационные учетные записи для каждой роли
var DefaultCredentials = []CredentialEntry{
	{Role: models.RolePublicSafety, Login: "1010", Password: "2020"},
	{Role: models.RoleCityAdmin, Login: "9090", Password: "8080"},
	{Role: models.RoleServiceProvider, Login: "1111", Password: "2222"},
	{Role: models.RoleSystemAdmin, Login: "9999", Password: "0000"},
	{Role: models.RoleCitizen, Login: "imeshdilshan109@gmail.com", Password: "1234"},
}

// StaticCredentialVerifier сверяет данные с фиксированной таблицей
type StaticCredentialVerifier struct {
	entries []CredentialEntry
	logger  *logrus.Logger
}

func NewStaticCredentialVerifier(entries []CredentialEntry, logger *logrus.Logger) *StaticCredentialVerifier {
	return &StaticCredentialVerifier{
		entries: entries,
		logger:  logger,
	}
}

// LoadCredentials читает таблицу из YAML-файла; пустой путь дает DefaultCredentials
func LoadCredentials(path string) ([]CredentialEntry, error) {
	if path == "" {
		return DefaultCredentials, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var entries []CredentialEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	for i, e := range entries {
		if !e.Role.Valid() || e.Login == "" || e.Password == "" {
			return nil, fmt.Errorf("credentials file: entry %d is incomplete or has unknown role %q", i, e.Role)
		}
	}
	return entries, nil
}

// Verify ищет точное совпадение роли, логина и пароля
func (v *StaticCredentialVerifier) Verify(ctx context.Context, creds models.Credentials) (models.Role, error) {
	log := v.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "Verify",
		"role":    creds.Role,
	})

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("service: could not verify credentials: %w", err)
	}

	for _, e := range v.entries {
		if e.Role != creds.Role {
			continue
		}
		loginOK := subtle.ConstantTimeCompare([]byte(e.Login), []byte(creds.Login)) == 1
		passwordOK := subtle.ConstantTimeCompare([]byte(e.Password), []byte(creds.Password)) == 1
		if loginOK && passwordOK {
			log.Info("Credentials verified")
			return e.Role, nil
		}
	}

	log.Warn("Credentials rejected")
	return "", fmt.Errorf("service: %w", models.ErrInvalidCredentials)
}
