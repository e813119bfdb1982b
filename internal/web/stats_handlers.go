package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/clinportal/recruitment-stats/internal/service"
)

// handleRecruitmentStatistics возвращает агрегированную статистику набора
// кандидатов. На каждый запрос создаётся свой кэширующий StatsRequest:
// тело и ETag считаются из одного вычисления, запрос к БД выполняется один раз.
func (s *Server) handleRecruitmentStatistics(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	status := http.StatusOK
	defer func() {
		observeStatisticsRequest(r.Method, strconv.Itoa(status), started)
	}()

	if r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	ctx := r.Context()
	statsReq := service.NewStatsRequest(s.statsService)

	body, err := statsReq.Body(ctx)
	if err != nil {
		var code, msg string
		status, code, msg = mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}

	// Тело уже вычислено, ETag берётся из кэша запроса.
	etag, err := statsReq.ETag(ctx)
	if err != nil {
		var code, msg string
		status, code, msg = mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", `"`+etag+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
