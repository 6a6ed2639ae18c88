package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	criticalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true)
)

func severityStyle(s domain.WarningSeverity) lipgloss.Style {
	switch s {
	case domain.SeverityCritical:
		return criticalStyle
	case domain.SeverityHigh:
		return warningStyle
	default:
		return dimStyle
	}
}

func renderReport(projectID int64, plan *domain.AllocationPlan) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("项目 #%d 资源分配方案", projectID)))
	b.WriteString("\n")

	m := plan.Metrics
	summary := []string{
		fmt.Sprintf("结束状态    %s（%d 代）", plan.Summary.State, plan.Summary.Generations),
		fmt.Sprintf("最优适应度  %s", highlightStyle.Render(fmt.Sprintf("%.4f", plan.Summary.BestFitness))),
		fmt.Sprintf("基准成本    %.2f", m.BaselineCost),
		fmt.Sprintf("优化后成本  %.2f", m.OptimizedCost),
		fmt.Sprintf("节省        %.2f（%.1f%%）", m.CostSavings, m.SavingsPercent),
		fmt.Sprintf("平均利用率  %.1f%%", m.AverageUtilization*100),
		fmt.Sprintf("可行性      %.2f", m.FeasibilityScore),
		fmt.Sprintf("耗时        %d ms", m.RunTimeMillis),
	}
	b.WriteString(boxStyle.Render(strings.Join(summary, "\n")))
	b.WriteString("\n\n")

	critical := make(map[int64]bool, len(plan.Schedule.CriticalTaskIDs))
	for _, id := range plan.Schedule.CriticalTaskIDs {
		critical[id] = true
	}

	for _, rec := range plan.Recommendations {
		header := fmt.Sprintf("%s  %.1f 天  %.2f", rec.TaskName, rec.DurationDays, rec.TotalCost)
		if critical[rec.TaskID] {
			header += "  " + criticalStyle.Render("关键路径")
		}
		b.WriteString(header)
		b.WriteString("\n")

		for _, r := range rec.Resources {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  - %s [%s] %.0f%%  %.2f", r.ResourceName, r.ResourceType, r.Percentage, r.EstimatedCost)))
			b.WriteString("\n")
		}
	}

	if len(plan.Warnings) == 0 {
		b.WriteString("\n")
		b.WriteString(successStyle.Render("✓ 没有警告"))
		return b.String()
	}

	b.WriteString("\n")
	for _, w := range plan.Warnings {
		b.WriteString(severityStyle(w.Severity).Render(fmt.Sprintf("! [%s] %s", w.Severity, w.Message)))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
