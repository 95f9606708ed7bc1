package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	"github.com/FACorreiaa/afa-daily-reports/pkg/money"
)

// DigestSection is one report of the digest with the report it is compared to
type DigestSection struct {
	Report   *report.DailyReport
	Previous *report.DailyReport
}

type digestRow struct {
	Product string
	Price   string
	Change  string
}

type digestTable struct {
	Title string
	Rows  []digestRow
}

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <h2>{{.Date}} 農產品價格日報</h2>
  {{range .Tables}}
  <h3>{{.Title}}</h3>
  <table cellpadding="4" style="border-collapse: collapse;">
    <tr><th align="left">品名</th><th align="right">平均價格</th><th align="right">漲跌</th></tr>
    {{range .Rows}}<tr><td>{{.Product}}</td><td align="right">{{.Price}}</td><td align="right">{{.Change}}</td></tr>
    {{end}}
  </table>
  {{end}}
</body>
</html>`))

// Digest mails the day's reports to the service recipients
func (m *Mailer) Digest(ctx context.Context, date time.Time, sections []DigestSection) error {
	if len(sections) == 0 {
		return nil
	}
	body, err := RenderDigest(date, sections)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s 價格日報", date.Format(report.DateLayout))
	return m.send(ctx, KindDigest, m.public, subject, body)
}

// RenderDigest renders the digest HTML
func RenderDigest(date time.Time, sections []DigestSection) (string, error) {
	tables := make([]digestTable, 0, len(sections))
	for _, s := range sections {
		prev := map[string]float64{}
		if s.Previous != nil {
			for _, p := range s.Previous.Products {
				prev[p.ProductName] = p.AveragePrice
			}
		}

		t := digestTable{Title: fmt.Sprintf("%s (%s)", s.Report.Category, s.Report.Source)}
		for _, p := range s.Report.Products {
			price := money.Price(p.AveragePrice)
			row := digestRow{Product: p.ProductName, Price: price.Display(), Change: "-"}
			if before, ok := prev[p.ProductName]; ok {
				if pct, ok := price.ChangePercent(money.Price(before)); ok {
					row.Change = pct.StringFixed(1) + "%"
					if pct.IsPositive() {
						row.Change = "+" + row.Change
					}
				}
			}
			t.Rows = append(t.Rows, row)
		}
		tables = append(tables, t)
	}

	var buf bytes.Buffer
	err := digestTemplate.Execute(&buf, struct {
		Date   string
		Tables []digestTable
	}{Date: date.Format(report.DateLayout), Tables: tables})
	if err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return buf.String(), nil
}
