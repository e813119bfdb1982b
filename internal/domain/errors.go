package domain

import (
	"errors"
	"fmt"
)

// Сентинельные ошибки домена, используемые сервисами, репозиториями и веб-слоем.
var (
	ErrProjectConfigMissing = errors.New("PROJECT_CONFIG_MISSING")
	ErrNotFound             = errors.New("NOT_FOUND")
)

// NewProjectConfigMissingError сообщает, что для проекта из справочника нет записи настроек.
// Это нарушение целостности данных портала, запрос завершается ошибкой без повторов.
func NewProjectConfigMissingError(projectID int) error {
	return fmt.Errorf("%w: no settings found for project %d", ErrProjectConfigMissing, projectID)
}

// NewNotFoundError возвращает ошибку отсутствия запрошенного ресурса.
func NewNotFoundError(resource string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, resource)
}
