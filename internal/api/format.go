package telegram

import (
	"fmt"
	"html"
	"strings"

	app "derma-bot/internal/application"
	"derma-bot/internal/domain/entity"
)

var severityIcons = map[entity.Severity]string{
	entity.SeverityMild:     "🟢",
	entity.SeverityModerate: "🟠",
	entity.SeveritySevere:   "🔴",
	entity.SeverityUnknown:  "⚪",
}

// FormatSummary краткая сводка отчёта в HTML-разметке Telegram
func FormatSummary(r *entity.Report) string {
	var sb strings.Builder
	esc := html.EscapeString

	fmt.Fprintf(&sb, "<b>Predicted disease:</b> %s\n", esc(r.Outcome.Label))
	fmt.Fprintf(&sb, "<b>Confidence:</b> %.2f%%\n", r.Outcome.ConfidencePercent)
	fmt.Fprintf(&sb, "<b>Severity:</b> %s %s\n", severityIcons[r.Outcome.Severity], r.Outcome.Severity)

	if len(r.Outcome.TopK) > 0 {
		sb.WriteString("\n<b>Top predictions:</b>\n")
		for i, p := range r.Outcome.TopK {
			fmt.Fprintf(&sb, "%d. %s — %.2f%%\n", i+1, esc(p.Label), p.ConfidencePercent)
		}
	}

	fmt.Fprintf(&sb, "\n🩺 <b>Symptoms:</b> %s\n", esc(r.Disease.Symptoms))

	sb.WriteString("\n💊 <b>Medicines:</b>\n")
	for _, m := range r.Disease.Medicines {
		fmt.Fprintf(&sb, "• <a href=\"%s\">%s</a>\n", esc(app.MedicineLink(m)), esc(m))
	}

	fmt.Fprintf(&sb, "\n👨‍⚕️ <b>Specialist:</b> %s (<a href=\"%s\">find nearby</a>)\n",
		esc(r.Disease.Specialist), esc(app.SpecialistLink(r.Disease.Specialist)))

	if r.ReferenceLabel != "" {
		mark := "✅"
		if !r.ReferenceAgrees {
			mark = "⚠️"
		}
		fmt.Fprintf(&sb, "\n%s <b>Reference label:</b> %s\n", mark, esc(r.ReferenceLabel))
	}
	if r.ExplanationNote != "" {
		fmt.Fprintf(&sb, "\nℹ️ %s\n", esc(r.ExplanationNote))
	}

	fmt.Fprintf(&sb, "\n<i>%s</i>", esc(r.Disclaimer))
	return sb.String()
}
