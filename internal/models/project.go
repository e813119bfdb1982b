package models

// ProjectSettings описывает настройки проекта из конфигурационного хранилища.
type ProjectSettings struct {
	ProjectID int    `json:"project_id"`
	Name      string `json:"name"`
	// nil — целевой набор для проекта не задан.
	RecruitmentTarget *int `json:"recruitment_target,omitempty"`
}
