package models

// Sex задаёт биологический пол кандидата так, как он хранится в БД.
type Sex string

const (
	SexFemale Sex = "Female"
	SexMale   Sex = "Male"
	SexOther  Sex = "Other"
)

// RecruitmentCount — одна строка агрегирующего запроса: число кандидатов
// с данным полом, зарегистрированных в данном проекте.
type RecruitmentCount struct {
	Count     int `json:"count"`
	Sex       Sex `json:"sex"`
	ProjectID int `json:"project_id"`
}
