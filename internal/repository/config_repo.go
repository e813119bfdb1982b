package repository

import (
	"context"
	"fmt"

	"github.com/clinportal/recruitment-stats/internal/models"
)

// GetSetting возвращает значение настройки портала по имени.
// nil означает, что настройка не задана — это не ошибка.
func (s *Storage) GetSetting(ctx context.Context, name string) (*string, error) {
	const q = `
	SELECT value
	FROM config_settings
	WHERE name = $1
	`

	rows, err := s.pool.Query(ctx, q, name)
	if err != nil {
		return nil, fmt.Errorf("query setting %s: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var value string
	if err := rows.Scan(&value); err != nil {
		return nil, fmt.Errorf("scan setting %s: %w", name, err)
	}
	return &value, nil
}

// GetProjectSettings возвращает настройки проекта по идентификатору.
// nil без ошибки означает отсутствие записи — решение об этом принимает сервис.
func (s *Storage) GetProjectSettings(ctx context.Context, projectID int) (*models.ProjectSettings, error) {
	const q = `
	SELECT project_id, name, recruitment_target
	FROM projects
	WHERE project_id = $1
	`

	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("query project settings: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var (
		id     int
		name   string
		target *int // может быть NULL
	)
	if err := rows.Scan(&id, &name, &target); err != nil {
		return nil, fmt.Errorf("scan project settings: %w", err)
	}

	return &models.ProjectSettings{
		ProjectID:         id,
		Name:              name,
		RecruitmentTarget: target,
	}, nil
}

// ListProjectIDs возвращает идентификаторы всех проектов портала в порядке возрастания.
func (s *Storage) ListProjectIDs(ctx context.Context) ([]int, error) {
	const q = `
	SELECT project_id
	FROM projects
	ORDER BY project_id
	`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query project ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project ids: %w", err)
	}

	return ids, nil
}
