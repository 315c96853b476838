package valuation

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"valuation-service/internal/core/domain"
)

const reportWidth = 80

// moneyPrinter дает разделители тысяч: 123456.7 -> "123,457"
var moneyPrinter = message.NewPrinter(language.English)

func money(v float64) string {
	return moneyPrinter.Sprintf("%.0f", v)
}

// RenderReport форматирует результат в текстовый отчет.
// Отчет только отображает поля результата и ничего не пересчитывает.
func RenderReport(r domain.ValuationResult) string {
	var sb strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}
	section := func(title string) {
		line("")
		line(strings.Repeat("=", reportWidth))
		line(title)
		line(strings.Repeat("-", reportWidth))
	}

	line(strings.Repeat("=", reportWidth))
	line("REPORT VALUTAZIONE IMMOBILE")
	line(strings.Repeat("=", reportWidth))
	line("")
	line("Immobile: %s - %.0f mq", r.Input.Municipality, r.Input.MainSurface)
	line("Età usufruttuario: %d anni", r.Input.UsufructuaryAge)
	line("Data valutazione: %s", r.ValuatedAt.Format("2006-01-02"))
	if r.Quote.ZoneCode != "" {
		line("Zona OMI: %s (fascia %s)", r.Quote.ZoneCode, r.Input.PriceBand)
	}

	// 1. Полная собственность по котировке
	section("1. VALORE PIENA PROPRIETÀ (Stima OMI Base)")
	line("Quotazione OMI: %s €/mq", money(r.Quote.MidPrice))
	line("Superficie utilizzata: %.0f mq", r.Surface.Total)
	line("")
	line("➜ Valore Range: %s - %s €", money(r.FullValue.Min), money(r.FullValue.Max))
	line("➜ Valore Medio: %s €", money(r.FullValue.Mid))

	// 2. Коэффициенты
	section("2. COEFFICIENTI DI MERITO")
	for _, a := range r.Merit.Adjustments {
		line("  %s: %+.1f%%", a.Factor, a.Value*100)
	}
	line("")
	line("  TOTALE: %+.1f%%", r.Merit.Total*100)
	line("  MOLTIPLICATORE: %.3fx", r.Merit.Multiplier)

	// 3. Скорректированная оценка
	section("3. STIMA MIA PER SEMPRE (Algoritmo Avanzato)")
	line("Valore base × Coefficienti merito")
	line("Variazione: %+.1f%%", (r.Merit.Multiplier-1)*100)
	line("")
	line("➜ Valore Range: %s - %s €", money(r.AdjustedValue.Min), money(r.AdjustedValue.Max))
	line("➜ Valore Medio: %s €", money(r.AdjustedValue.Mid))

	// 4. Фискальная часть
	section("4. VALORE FISCALE (Riferimento Tasse)")
	f := r.Fiscal
	line("Tasso legale: %.2f%%", f.LegalRate*100)
	line("Coefficiente età %d: %d", r.Input.UsufructuaryAge, f.Coefficient)
	line("Annualità: %s €", money(f.Annuity))
	line("")
	line("➜ Valore Usufrutto (%d%%): %s €", f.UsufructPercent, money(f.UsufructValue))
	line("➜ Valore Nuda Proprietà (%d%%): %s €", f.BarePercent, money(f.BareValue))

	// 5. Сделка
	if r.Deal != nil {
		section("5. PREZZO RICHIESTO & DEAL SCORE")
		line("Prezzo richiesto: %s €", money(r.Input.AskingPrice))
		line("")
		line("%s %s", strings.Repeat("★", r.Deal.Stars), strings.ReplaceAll(string(r.Deal.Tier), "_", " "))
		line("   %s", r.Deal.Message)
		line("   Scarto: %+.1f%%", r.Deal.DiscountPercent)
	}

	if len(r.Warnings) > 0 {
		section("AVVISI")
		for _, w := range r.Warnings {
			line("! %s", w)
		}
	}

	line("")
	sb.WriteString(strings.Repeat("=", reportWidth))
	return sb.String()
}
