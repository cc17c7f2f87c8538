package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/enterprise-workflow/workflowd/internal/config"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
)

// InstanceSource supplies the instances analytics is computed over.
type InstanceSource interface {
	AllInstances(ctx context.Context) ([]model.WorkflowInstance, error)
}

// Report is the full analytics payload.
type Report struct {
	Summary            SummaryStats          `json:"summary"`
	Performance        []TemplatePerformance `json:"performance"`
	StatusDistribution map[string]int64      `json:"statusDistribution"`
	Trends             []DailyTrend          `json:"trends"`
}

// SummaryStats aggregates the whole instance population. The completion rate
// is approved over decided (approved plus rejected); pending work does not
// drag the rate down.
type SummaryStats struct {
	TotalWorkflows             int64   `json:"totalWorkflows"`
	CompletionRate             float64 `json:"completionRate"`
	AverageCompletionTimeHours float64 `json:"averageCompletionTimeHours"`
	TotalPending               int64   `json:"totalPending"`
}

// TemplatePerformance aggregates decided instances per workflow template.
type TemplatePerformance struct {
	WorkflowTitle    string  `json:"workflowTitle"`
	CompletedCount   int64   `json:"completedCount"`
	AverageTimeHours float64 `json:"averageTimeHours"`
	BottleneckRisk   string  `json:"bottleneckRisk"`
}

// DailyTrend counts submissions and decisions for one calendar day.
type DailyTrend struct {
	Date           string `json:"date"`
	SubmittedCount int64  `json:"submittedCount"`
	CompletedCount int64  `json:"completedCount"`
}

// Service computes analytics reports. Computation is pure over the instance
// snapshot; persistence stays behind InstanceSource.
type Service struct {
	source InstanceSource
	cfg    config.AnalyticsConfig
	now    func() time.Time
}

func NewService(source InstanceSource, cfg config.AnalyticsConfig) *Service {
	return &Service{source: source, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// Report builds the full analytics payload from the current instances.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	instances, err := s.source.AllInstances(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{
		Summary:            s.summary(instances),
		Performance:        s.performance(instances),
		StatusDistribution: s.statusDistribution(instances),
		Trends:             s.trends(instances),
	}, nil
}

func (s *Service) summary(instances []model.WorkflowInstance) SummaryStats {
	stats := SummaryStats{TotalWorkflows: int64(len(instances))}

	var approved, rejected int64
	var completionHours float64
	var completed int64
	for i := range instances {
		inst := &instances[i]
		switch inst.Status {
		case model.StatusPending:
			stats.TotalPending++
		case model.StatusApproved:
			approved++
		case model.StatusRejected:
			rejected++
		}
		if inst.Status.Terminal() && inst.DecidedAt != nil {
			completionHours += inst.DecidedAt.Sub(inst.SubmittedAt).Hours()
			completed++
		}
	}

	if approved+rejected > 0 {
		stats.CompletionRate = float64(approved) / float64(approved+rejected) * 100
	}
	if completed > 0 {
		stats.AverageCompletionTimeHours = completionHours / float64(completed)
	}
	return stats
}

func (s *Service) performance(instances []model.WorkflowInstance) []TemplatePerformance {
	type group struct {
		completed int64
		hours     float64
	}
	groups := make(map[string]*group)
	for i := range instances {
		inst := &instances[i]
		if inst.Template == nil {
			continue
		}
		g := groups[inst.Template.Title]
		if g == nil {
			g = &group{}
			groups[inst.Template.Title] = g
		}
		if inst.Status.Terminal() && inst.DecidedAt != nil {
			g.completed++
			g.hours += inst.DecidedAt.Sub(inst.SubmittedAt).Hours()
		}
	}

	out := make([]TemplatePerformance, 0, len(groups))
	for title, g := range groups {
		avg := 0.0
		if g.completed > 0 {
			avg = g.hours / float64(g.completed)
		}
		out = append(out, TemplatePerformance{
			WorkflowTitle:    title,
			CompletedCount:   g.completed,
			AverageTimeHours: avg,
			BottleneckRisk:   s.risk(avg),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageTimeHours != out[j].AverageTimeHours {
			return out[i].AverageTimeHours > out[j].AverageTimeHours
		}
		return out[i].WorkflowTitle < out[j].WorkflowTitle
	})
	return out
}

func (s *Service) risk(avgHours float64) string {
	switch {
	case avgHours > s.cfg.HighRiskHours:
		return "HIGH"
	case avgHours > s.cfg.MediumRiskHours:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// statusDistribution counts instances per status, zero-filling every known
// status so consumers never miss a series.
func (s *Service) statusDistribution(instances []model.WorkflowInstance) map[string]int64 {
	dist := make(map[string]int64, 4)
	for _, status := range model.AllStatuses() {
		dist[string(status)] = 0
	}
	for i := range instances {
		dist[string(instances[i].Status)]++
	}
	return dist
}

// trends returns one entry per trailing calendar day, oldest first, with
// zero-filled gaps so the trend line is continuous.
func (s *Service) trends(instances []model.WorkflowInstance) []DailyTrend {
	today := s.now().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(s.cfg.TrendDays - 1))

	submitted := make(map[string]int64)
	completed := make(map[string]int64)
	for i := range instances {
		inst := &instances[i]
		if !inst.SubmittedAt.Before(start) {
			submitted[inst.SubmittedAt.UTC().Format("2006-01-02")]++
		}
		if inst.Status.Terminal() && inst.DecidedAt != nil && !inst.DecidedAt.Before(start) {
			completed[inst.DecidedAt.UTC().Format("2006-01-02")]++
		}
	}

	out := make([]DailyTrend, 0, s.cfg.TrendDays)
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		out = append(out, DailyTrend{
			Date:           date,
			SubmittedCount: submitted[date],
			CompletedCount: completed[date],
		})
	}
	return out
}
