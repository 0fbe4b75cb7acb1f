package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/eventide-agency/eventide/internal/devis"
)

// DevisRenderer turns a quote into a PDF via the Gotenberg client.
type DevisRenderer struct {
	client *Client
	tmpl   *template.Template
}

// NewDevisRenderer constructs a renderer.
func NewDevisRenderer(client *Client) *DevisRenderer {
	return &DevisRenderer{
		client: client,
		tmpl:   template.Must(template.New("devis").Funcs(template.FuncMap{"euro": euro}).Parse(devisTemplate)),
	}
}

// RenderDevis produces the PDF bytes for a quote.
func (r *DevisRenderer) RenderDevis(ctx context.Context, d devis.WithTotals) ([]byte, error) {
	html, err := RenderDevisHTML(r.tmpl, d)
	if err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, html)
}

// RenderDevisHTML renders the quote document markup.
func RenderDevisHTML(tmpl *template.Template, d devis.WithTotals) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render devis template: %w", err)
	}
	return buf.String(), nil
}

func euro(v float64) string {
	return fmt.Sprintf("%.2f EUR", v)
}

const devisTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #222; }
h1 { font-size: 22px; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
th, td { border-bottom: 1px solid #ddd; padding: 8px 4px; text-align: left; }
td.amount, th.amount { text-align: right; }
tfoot td { font-weight: bold; border-bottom: none; }
.meta { color: #666; font-size: 12px; }
</style>
</head>
<body>
<h1>Devis {{.Number}}</h1>
<p class="meta">Issued {{.CreatedAt.Format "02/01/2006"}}{{if .SentAt}} &middot; Sent {{.SentAt.Format "02/01/2006"}}{{end}}</p>
<table>
<thead>
<tr><th>Prestation</th><th class="amount">Amount</th></tr>
</thead>
<tbody>
{{range .Lines}}<tr><td>{{.Label}}</td><td class="amount">{{euro .Amount}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td>Total before tax</td><td class="amount">{{euro .Computed.PreTaxTotal}}</td></tr>
<tr><td>VAT ({{printf "%.1f" .Computed.TaxRate}}%)</td><td class="amount">{{euro .Computed.TaxAmount}}</td></tr>
<tr><td>Total</td><td class="amount">{{euro .Computed.TotalWithTax}}</td></tr>
</tfoot>
</table>
</body>
</html>`
