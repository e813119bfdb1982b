package service

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/clinportal/recruitment-stats/internal/domain"
	"github.com/clinportal/recruitment-stats/internal/models"
)

// Имя настройки с общим целевым набором в конфигурационном хранилище портала.
const recruitmentTargetSetting = "recruitmentTarget"

// Заголовок сводной записи прогресса.
const overallTitle = "Overall Recruitment"

type StatisticsRepository interface {
	GetRecruitmentCounts(ctx context.Context) ([]models.RecruitmentCount, error)
	GetSetting(ctx context.Context, name string) (*string, error)
	GetProjectSettings(ctx context.Context, projectID int) (*models.ProjectSettings, error)
	ListProjectIDs(ctx context.Context) ([]int, error)
}

type RecruitmentManager struct {
	repo StatisticsRepository
}

// NewRecruitmentManager связывает менеджер статистики с репозиторием портала.
func NewRecruitmentManager(repo StatisticsRepository) *RecruitmentManager {
	return &RecruitmentManager{repo: repo}
}

// ComputeStatistics собирает полную статистику набора: сводную запись,
// по одной записи на каждый проект портала и общий прогресс исследования.
func (rm *RecruitmentManager) ComputeStatistics(ctx context.Context) (*models.StatisticsPayload, error) {
	overallTarget, err := rm.overallTarget(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := rm.repo.GetRecruitmentCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recruitment counts: %w", err)
	}

	totalScans := 0
	for _, c := range counts {
		totalScans += c.Count
	}

	recruitment := make(map[string]*models.ProgressBar)
	recruitment[models.OverallBucket] = buildProgressBar(models.OverallBucket, overallTitle, overallTarget, totalScans, counts)

	projectIDs, err := rm.repo.ListProjectIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	for _, projectID := range projectIDs {
		settings, err := rm.repo.GetProjectSettings(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("failed to get settings for project %d: %w", projectID, err)
		}
		if settings == nil {
			return nil, domain.NewProjectConfigMissingError(projectID)
		}

		bucket := strconv.Itoa(projectID)
		total := projectTotal(counts, projectID)
		recruitment[bucket] = buildProgressBar(bucket, settings.Name, targetOrZero(settings.RecruitmentTarget), total, counts)
	}

	return &models.StatisticsPayload{
		Recruitment: recruitment,
		StudyProgression: models.StudyProgression{
			TotalScans:  totalScans,
			Recruitment: recruitment,
		},
	}, nil
}

// overallTarget читает общий целевой набор из конфигурационного хранилища.
// Отсутствие настройки означает, что целевой набор не задан.
func (rm *RecruitmentManager) overallTarget(ctx context.Context) (int, error) {
	value, err := rm.repo.GetSetting(ctx, recruitmentTargetSetting)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s setting: %w", recruitmentTargetSetting, err)
	}
	if value == nil {
		return 0, nil
	}

	target, err := strconv.Atoi(*value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s setting %q: %w", recruitmentTargetSetting, *value, err)
	}
	return target, nil
}

// buildProgressBar формирует запись виджета прогресса для одной корзины:
// "overall" либо десятичного ID проекта. При незаданном (или отрицательном)
// целевом наборе запись содержит только заголовок и сумму — проценты не считаются.
func buildProgressBar(bucket, title string, target, totalRecruitment int, counts []models.RecruitmentCount) *models.ProgressBar {
	bar := &models.ProgressBar{
		Title:            title,
		TotalRecruitment: totalRecruitment,
	}
	if target <= 0 {
		return bar
	}

	var femaleTotal, maleTotal int
	if bucket == models.OverallBucket {
		femaleTotal = sexTotal(counts, models.SexFemale)
		maleTotal = sexTotal(counts, models.SexMale)
	} else {
		projectID, err := strconv.Atoi(bucket)
		if err != nil {
			// Неизвестная корзина не содержит кандидатов.
			projectID = -1
		}
		femaleTotal = sexTotalForProject(counts, models.SexFemale, projectID)
		maleTotal = sexTotalForProject(counts, models.SexMale, projectID)
	}

	femalePercent := roundPercent(femaleTotal, target)
	malePercent := roundPercent(maleTotal, target)

	bar.RecruitmentTarget = &target
	bar.FemaleTotal = &femaleTotal
	bar.FemalePercent = &femalePercent
	bar.MaleTotal = &maleTotal
	bar.MalePercent = &malePercent

	// Набор превысил целевой: проценты пересчитываются от фактической суммы,
	// чтобы виджет мог отрисовать переполненную шкалу.
	if totalRecruitment > target {
		femaleFull := roundPercent(femaleTotal, totalRecruitment)
		maleFull := roundPercent(maleTotal, totalRecruitment)
		bar.SurpassedRecruitment = true
		bar.FemaleFullPercent = &femaleFull
		bar.MaleFullPercent = &maleFull
	}

	return bar
}

// sexTotal суммирует счётчики заданного пола по всем проектам.
func sexTotal(counts []models.RecruitmentCount, sex models.Sex) int {
	total := 0
	for _, c := range counts {
		if c.Sex == sex {
			total += c.Count
		}
	}
	return total
}

// sexTotalForProject суммирует счётчики заданного пола в рамках одного проекта.
func sexTotalForProject(counts []models.RecruitmentCount, sex models.Sex, projectID int) int {
	total := 0
	for _, c := range counts {
		if c.Sex == sex && c.ProjectID == projectID {
			total += c.Count
		}
	}
	return total
}

// projectTotal суммирует счётчики всех полов в рамках одного проекта.
func projectTotal(counts []models.RecruitmentCount, projectID int) int {
	total := 0
	for _, c := range counts {
		if c.ProjectID == projectID {
			total += c.Count
		}
	}
	return total
}

// roundPercent возвращает долю part от whole в процентах,
// округлённую до целого (половина — от нуля).
func roundPercent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func targetOrZero(target *int) int {
	if target == nil {
		return 0
	}
	return *target
}
