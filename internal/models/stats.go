package models

// OverallBucket — ключ сводной записи в отображении recruitment.
const OverallBucket = "overall"

// ProgressBar содержит данные одного виджета прогресса набора.
// Поля-указатели присутствуют в JSON только когда для корзины задан целевой набор.
type ProgressBar struct {
	Title            string `json:"title"`
	TotalRecruitment int    `json:"total_recruitment"`

	RecruitmentTarget *int `json:"recruitment_target,omitempty"`
	FemaleTotal       *int `json:"female_total,omitempty"`
	FemalePercent     *int `json:"female_percent,omitempty"`
	MaleTotal         *int `json:"male_total,omitempty"`
	MalePercent       *int `json:"male_percent,omitempty"`

	// Заполняются, когда фактический набор превысил целевой.
	SurpassedRecruitment bool `json:"surpassed_recruitment,omitempty"`
	FemaleFullPercent    *int `json:"female_full_percent,omitempty"`
	MaleFullPercent      *int `json:"male_full_percent,omitempty"`
}

// StudyProgression агрегирует общее число сканов и те же записи прогресса.
type StudyProgression struct {
	TotalScans  int                     `json:"total_scans"`
	Recruitment map[string]*ProgressBar `json:"recruitment"`
}

// StatisticsPayload — полное тело ответа эндпоинта статистики набора.
// Ключи отображения recruitment: "overall" либо десятичный ID проекта.
type StatisticsPayload struct {
	Recruitment      map[string]*ProgressBar `json:"recruitment"`
	StudyProgression StudyProgression        `json:"study_progression"`
}
