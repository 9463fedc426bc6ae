package assistant

import (
	"errors"
	"fmt"
	"strings"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

// HelpText answers help requests.
const HelpText = `👋 ¡Hola! Puedes escribir mensajes como:
• "Gasté 2000 en combustible"
• "Comí por 15 mil"
• "Dame el reporte del mes"
• "¿Cuál fue mi mayor gasto?"
• "Exportar a CSV"`

// FailureText is shown when a message could not be carried out.
const FailureText = "❌ Error al procesar el mensaje. Intenta de nuevo."

// ExportUnavailableText answers export requests when no exporter is set.
const ExportUnavailableText = "⚠️ La exportación no está configurada."

// InvalidEntryText answers an expense the ledger refused to store.
const InvalidEntryText = "⚠️ No pude registrar el gasto. Revisa el monto y la descripción."

const noExpensesText = "No hay gastos registrados este mes"

func expenseText(e core.Expense) string {
	return fmt.Sprintf("✅ Gasto registrado: $%s en %s", core.FormatAmount(e.Amount), e.Category)
}

func reportText(r core.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Reporte del %s al %s\n", r.Start, r.End)
	if r.Count == 0 {
		b.WriteString("No hay gastos registrados en este período")
		return b.String()
	}
	fmt.Fprintf(&b, "Total gastos: $%s\n", core.FormatAmount(r.TotalExpenses))
	if r.TotalIncome.IsPositive() {
		fmt.Fprintf(&b, "Total ingresos: $%s\n", core.FormatAmount(r.TotalIncome))
	}
	fmt.Fprintf(&b, "Registros: %d", r.Count)
	for _, c := range r.ByCategory {
		fmt.Fprintf(&b, "\n• %s: $%s", c.Category.Name(), core.FormatAmount(c.Amount))
	}
	return b.String()
}

func exportText(res ledger.ExportResult) string {
	return fmt.Sprintf("📁 Exportados %d registros (%s): %s", res.Count, res.Format, res.Location)
}

func highestText(e core.Expense) string {
	return fmt.Sprintf("💰 Tu mayor gasto del mes: $%s en %s (%s, %s)",
		core.FormatAmount(e.Amount), e.Category, e.Description, e.Date)
}

func topText(top []core.Expense) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Tus %d mayores gastos del mes:", len(top))
	for i, e := range top {
		fmt.Fprintf(&b, "\n%d. $%s en %s (%s)", i+1, core.FormatAmount(e.Amount), e.Category, e.Description)
	}
	return b.String()
}

func preferencesText(p core.Preferences) string {
	return fmt.Sprintf("⚙️ Reportes: diario %s, semanal %s, mensual %s. Cámbialos en Configuración.",
		onOff(p.DailyReport), onOff(p.WeeklyReport), onOff(p.MonthlyReport))
}

func onOff(b bool) string {
	if b {
		return "activado"
	}
	return "desactivado"
}

// ErrorText picks the reply text for a failed message.
func ErrorText(err error) string {
	switch {
	case errors.Is(err, ErrExportUnavailable):
		return ExportUnavailableText
	case core.IsInvalid(err):
		return InvalidEntryText
	}
	return FailureText
}

// IsUserError reports whether err is final for the message that caused it:
// retrying the same text cannot succeed.
func IsUserError(err error) bool {
	return errors.Is(err, ErrExportUnavailable) || core.IsInvalid(err)
}
