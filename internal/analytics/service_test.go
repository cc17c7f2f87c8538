package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/enterprise-workflow/workflowd/internal/config"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
)

type staticSource struct {
	instances []model.WorkflowInstance
}

func (s *staticSource) AllInstances(ctx context.Context) ([]model.WorkflowInstance, error) {
	return s.instances, nil
}

func testConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		HighRiskHours:   48,
		MediumRiskHours: 24,
		TrendDays:       7,
	}
}

func newTestService(t *testing.T, now time.Time, instances ...model.WorkflowInstance) *Service {
	t.Helper()
	service := NewService(&staticSource{instances: instances}, testConfig())
	service.now = func() time.Time { return now }
	return service
}

func instanceAt(template string, status model.InstanceStatus, submitted time.Time, decidedAfter time.Duration) model.WorkflowInstance {
	inst := model.WorkflowInstance{
		BaseModel:   model.BaseModel{ID: uuid.New()},
		Status:      status,
		SubmittedAt: submitted,
		Template:    &model.WorkflowTemplate{Title: template},
	}
	if status.Terminal() {
		decided := submitted.Add(decidedAfter)
		inst.DecidedAt = &decided
	}
	return inst
}

func TestService_Summary(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("approved and pending", func(t *testing.T) {
		service := newTestService(t, now,
			instanceAt("Leave Application", model.StatusApproved, now.Add(-3*time.Hour), 2*time.Hour),
			instanceAt("Leave Application", model.StatusPending, now.Add(-1*time.Hour), 0),
		)

		report, err := service.Report(context.Background())
		assert.NoError(t, err)

		assert.Equal(t, int64(2), report.Summary.TotalWorkflows)
		assert.Equal(t, float64(100), report.Summary.CompletionRate)
		assert.InDelta(t, 2.0, report.Summary.AverageCompletionTimeHours, 0.001)
		assert.Equal(t, int64(1), report.Summary.TotalPending)
	})

	t.Run("rate counts only decided instances", func(t *testing.T) {
		service := newTestService(t, now,
			instanceAt("Grievance Report", model.StatusApproved, now.Add(-10*time.Hour), time.Hour),
			instanceAt("Grievance Report", model.StatusRejected, now.Add(-10*time.Hour), 3*time.Hour),
			instanceAt("Grievance Report", model.StatusChangesRequested, now.Add(-10*time.Hour), 0),
		)

		report, err := service.Report(context.Background())
		assert.NoError(t, err)
		assert.InDelta(t, 50.0, report.Summary.CompletionRate, 0.001)
	})

	t.Run("empty population", func(t *testing.T) {
		service := newTestService(t, now)

		report, err := service.Report(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, int64(0), report.Summary.TotalWorkflows)
		assert.Equal(t, float64(0), report.Summary.CompletionRate)
		assert.Equal(t, float64(0), report.Summary.AverageCompletionTimeHours)
	})
}

func TestService_StatusDistribution(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service := newTestService(t, now,
		instanceAt("Leave Application", model.StatusApproved, now.Add(-2*time.Hour), time.Hour),
	)

	report, err := service.Report(context.Background())
	assert.NoError(t, err)

	// Every status appears even with zero instances.
	assert.Equal(t, map[string]int64{
		"PENDING":           0,
		"APPROVED":          1,
		"REJECTED":          0,
		"CHANGES_REQUESTED": 0,
	}, report.StatusDistribution)
}

func TestService_Performance(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service := newTestService(t, now,
		instanceAt("Fast Track", model.StatusApproved, now.Add(-100*time.Hour), 2*time.Hour),
		instanceAt("Fast Track", model.StatusRejected, now.Add(-100*time.Hour), 4*time.Hour),
		instanceAt("Slow Lane", model.StatusApproved, now.Add(-100*time.Hour), 60*time.Hour),
		instanceAt("Middle Road", model.StatusApproved, now.Add(-100*time.Hour), 30*time.Hour),
		instanceAt("Untouched", model.StatusPending, now.Add(-1*time.Hour), 0),
	)

	report, err := service.Report(context.Background())
	assert.NoError(t, err)

	assert.Len(t, report.Performance, 4)
	// Sorted by average completion time, slowest first.
	assert.Equal(t, "Slow Lane", report.Performance[0].WorkflowTitle)
	assert.Equal(t, "HIGH", report.Performance[0].BottleneckRisk)
	assert.Equal(t, "Middle Road", report.Performance[1].WorkflowTitle)
	assert.Equal(t, "MEDIUM", report.Performance[1].BottleneckRisk)
	assert.Equal(t, "Fast Track", report.Performance[2].WorkflowTitle)
	assert.Equal(t, "LOW", report.Performance[2].BottleneckRisk)
	assert.InDelta(t, 3.0, report.Performance[2].AverageTimeHours, 0.001)
	assert.Equal(t, int64(2), report.Performance[2].CompletedCount)

	// Templates with no decided instances still appear, at zero.
	assert.Equal(t, "Untouched", report.Performance[3].WorkflowTitle)
	assert.Equal(t, int64(0), report.Performance[3].CompletedCount)
}

func TestService_Trends(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	service := newTestService(t, now,
		instanceAt("Leave Application", model.StatusPending, now.Add(-26*time.Hour), 0),
		instanceAt("Leave Application", model.StatusApproved, now.Add(-50*time.Hour), 48*time.Hour),
		// Submitted before the window: excluded from submissions but its
		// decision falls inside.
		instanceAt("Leave Application", model.StatusRejected, now.AddDate(0, 0, -10), 9*24*time.Hour),
	)

	report, err := service.Report(context.Background())
	assert.NoError(t, err)

	assert.Len(t, report.Trends, 7)
	assert.Equal(t, "2026-03-04", report.Trends[0].Date)
	assert.Equal(t, "2026-03-10", report.Trends[6].Date)

	byDate := make(map[string]DailyTrend, len(report.Trends))
	for _, trend := range report.Trends {
		byDate[trend.Date] = trend
	}
	assert.Equal(t, int64(1), byDate["2026-03-09"].SubmittedCount) // 26h ago
	assert.Equal(t, int64(1), byDate["2026-03-08"].SubmittedCount) // 50h ago
	assert.Equal(t, int64(1), byDate["2026-03-10"].CompletedCount) // decided 48h after 50h ago
	assert.Equal(t, int64(1), byDate["2026-03-09"].CompletedCount) // old submission decided in window
	assert.Equal(t, int64(0), byDate["2026-03-04"].SubmittedCount)
}
