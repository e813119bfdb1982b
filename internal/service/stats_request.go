package service

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"

	"github.com/clinportal/recruitment-stats/internal/models"
)

// StatisticsComputer вычисляет полную статистику набора.
type StatisticsComputer interface {
	ComputeStatistics(ctx context.Context) (*models.StatisticsPayload, error)
}

// StatsRequest — кэш одного HTTP-запроса. Статистика считается ровно один раз;
// тело ответа и ETag строятся из одного и того же сохранённого результата,
// поэтому расхождение между ними невозможно. Экземпляр создаётся на каждый
// входящий запрос и не переживает его.
type StatsRequest struct {
	computer StatisticsComputer

	computed bool
	payload  *models.StatisticsPayload
	body     []byte
	err      error
}

// NewStatsRequest создаёт кэширующую обёртку для одного запроса.
func NewStatsRequest(computer StatisticsComputer) *StatsRequest {
	return &StatsRequest{computer: computer}
}

// compute выполняет вычисление при первом обращении и запоминает результат,
// включая ошибку: повторные вызовы не ходят в БД.
func (r *StatsRequest) compute(ctx context.Context) error {
	if r.computed {
		return r.err
	}
	r.computed = true

	payload, err := r.computer.ComputeStatistics(ctx)
	if err != nil {
		r.err = err
		return r.err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		r.err = fmt.Errorf("failed to serialize statistics payload: %w", err)
		return r.err
	}

	r.payload = payload
	r.body = body
	return nil
}

// Payload возвращает вычисленную статистику запроса.
func (r *StatsRequest) Payload(ctx context.Context) (*models.StatisticsPayload, error) {
	if err := r.compute(ctx); err != nil {
		return nil, err
	}
	return r.payload, nil
}

// Body возвращает сериализованное тело ответа. Ключи отображений JSON-кодер
// сортирует, поэтому байты детерминированы для одних и тех же данных.
func (r *StatsRequest) Body(ctx context.Context) ([]byte, error) {
	if err := r.compute(ctx); err != nil {
		return nil, err
	}
	return r.body, nil
}

// ETag возвращает hex-представление MD5 от байтов тела ответа.
func (r *StatsRequest) ETag(ctx context.Context) (string, error) {
	body, err := r.Body(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", md5.Sum(body)), nil
}
