package web

import (
	"context"

	"github.com/clinportal/recruitment-stats/internal/models"
)

// RecruitmentService описывает операции статистики набора, которые нужны HTTP-слою.
type RecruitmentService interface {
	ComputeStatistics(ctx context.Context) (*models.StatisticsPayload, error)
}
