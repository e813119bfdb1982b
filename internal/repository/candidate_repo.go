package repository

import (
	"context"
	"fmt"

	"github.com/clinportal/recruitment-stats/internal/models"
)

// GetRecruitmentCounts выполняет агрегирующий запрос по кандидатам: число
// активных кандидатов-людей вне исключённого центра, сгруппированное по полу
// и проекту регистрации.
func (s *Storage) GetRecruitmentCounts(ctx context.Context) ([]models.RecruitmentCount, error) {
	const q = `
	SELECT COUNT(c.candidate_id) AS count, c.sex, c.registration_project_id
	FROM candidates c
	WHERE c.active = TRUE
		AND c.entity_type = 'human'
		AND c.registration_center_id <> $1
	GROUP BY c.sex, c.registration_project_id
	`

	rows, err := s.pool.Query(ctx, q, s.excludedCenterID)
	if err != nil {
		return nil, fmt.Errorf("query recruitment counts: %w", err)
	}
	defer rows.Close()

	var counts []models.RecruitmentCount
	for rows.Next() {
		var (
			count     int
			sex       string
			projectID int
		)
		if err := rows.Scan(&count, &sex, &projectID); err != nil {
			return nil, fmt.Errorf("scan recruitment count: %w", err)
		}
		counts = append(counts, models.RecruitmentCount{
			Count:     count,
			Sex:       models.Sex(sex),
			ProjectID: projectID,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recruitment counts: %w", err)
	}

	return counts, nil
}
