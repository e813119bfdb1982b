package e2e

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clinportal/recruitment-stats/conf"
	"github.com/clinportal/recruitment-stats/internal/models"
	"github.com/clinportal/recruitment-stats/internal/service"
	"github.com/clinportal/recruitment-stats/internal/web"
)

// memoryRepository — репозиторий в памяти для E2E без настоящей БД.
type memoryRepository struct {
	counts   []models.RecruitmentCount
	settings map[string]string
	projects map[int]*models.ProjectSettings
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		counts: []models.RecruitmentCount{
			{Count: 10, Sex: models.SexFemale, ProjectID: 1},
			{Count: 5, Sex: models.SexMale, ProjectID: 1},
			{Count: 3, Sex: models.SexFemale, ProjectID: 2},
		},
		settings: map[string]string{
			"recruitmentTarget": "20",
		},
		projects: map[int]*models.ProjectSettings{
			1: {ProjectID: 1, Name: "Alpha Study", RecruitmentTarget: intPtr(10)},
			2: {ProjectID: 2, Name: "Beta Study"},
		},
	}
}

func (m *memoryRepository) GetRecruitmentCounts(ctx context.Context) ([]models.RecruitmentCount, error) {
	return m.counts, nil
}

func (m *memoryRepository) GetSetting(ctx context.Context, name string) (*string, error) {
	value, ok := m.settings[name]
	if !ok {
		return nil, nil
	}
	return &value, nil
}

func (m *memoryRepository) GetProjectSettings(ctx context.Context, projectID int) (*models.ProjectSettings, error) {
	return m.projects[projectID], nil
}

func (m *memoryRepository) ListProjectIDs(ctx context.Context) ([]int, error) {
	ids := make([]int, 0, len(m.projects))
	for id := range m.projects {
		ids = append(ids, id)
	}
	// Справочник отдаёт проекты в возрастающем порядке.
	sort.Ints(ids)
	return ids, nil
}

func intPtr(n int) *int { return &n }

type e2eSuite struct {
	t       *testing.T
	server  *web.Server
	baseURL string
	client  *http.Client
	errCh   chan error
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()

	repo := newMemoryRepository()
	recruitmentManager := service.NewRecruitmentManager(repo)

	cfg := conf.HttpServConf{
		Host: "127.0.0.1",
		Port: freePort(t),
	}

	server := web.New(cfg, recruitmentManager)
	suite := &e2eSuite{
		t:       t,
		server:  server,
		baseURL: fmt.Sprintf("http://%s", server.Address),
		client: &http.Client{
			Timeout: 3 * time.Second,
		},
		errCh: make(chan error, 1),
	}
	suite.startServer()
	suite.waitForReady()

	t.Cleanup(func() {
		suite.shutdown()
	})

	return suite
}

func (s *e2eSuite) startServer() {
	go func() {
		err := s.server.Start()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
			return
		}
		s.errCh <- nil
	}()
}

func (s *e2eSuite) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(s.t, s.server.Shutdown(ctx))
	err := <-s.errCh
	require.NoError(s.t, err)
}

func (s *e2eSuite) waitForReady() {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := s.client.Get(s.url("/health"))
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		time.Sleep(20 * time.Millisecond)
	}
	s.t.Fatalf("server at %s did not become ready", s.baseURL)
}

func (s *e2eSuite) url(path string) string {
	return fmt.Sprintf("%s%s", s.baseURL, path)
}

func freePort(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	addr := ln.Addr().(*net.TCPAddr)
	return strconv.Itoa(addr.Port)
}

func TestE2E_RecruitmentStatistics(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("health", func(t *testing.T) {
		resp, err := suite.client.Get(suite.url("/health"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	var firstETag string

	t.Run("statistics payload", func(t *testing.T) {
		resp, err := suite.client.Get(suite.url("/statistics/recruitment"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		firstETag = resp.Header.Get("ETag")
		require.Equal(t, fmt.Sprintf(`"%x"`, md5.Sum(body)), firstETag)

		var payload models.StatisticsPayload
		require.NoError(t, json.Unmarshal(body, &payload))

		require.Equal(t, 18, payload.StudyProgression.TotalScans)
		require.Len(t, payload.Recruitment, 3)

		overall := payload.Recruitment[models.OverallBucket]
		require.NotNil(t, overall)
		require.Equal(t, "Overall Recruitment", overall.Title)
		require.Equal(t, 18, overall.TotalRecruitment)
		require.Equal(t, 65, *overall.FemalePercent)
		require.Equal(t, 25, *overall.MalePercent)
		require.False(t, overall.SurpassedRecruitment)

		alpha := payload.Recruitment["1"]
		require.NotNil(t, alpha)
		require.True(t, alpha.SurpassedRecruitment)
		require.Equal(t, 67, *alpha.FemaleFullPercent)
		require.Equal(t, 33, *alpha.MaleFullPercent)

		beta := payload.Recruitment["2"]
		require.NotNil(t, beta)
		require.Equal(t, 3, beta.TotalRecruitment)
		require.Nil(t, beta.RecruitmentTarget)
	})

	t.Run("etag is stable across requests", func(t *testing.T) {
		resp, err := suite.client.Get(suite.url("/statistics/recruitment"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, firstETag, resp.Header.Get("ETag"))
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, err := suite.client.Post(suite.url("/statistics/recruitment"), "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		require.Equal(t, http.MethodGet, resp.Header.Get("Allow"))

		var body struct {
			Allow []string `json:"allow"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, []string{http.MethodGet}, body.Allow)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := suite.client.Get(suite.url("/metrics"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
