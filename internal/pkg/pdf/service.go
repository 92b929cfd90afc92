// Package pdf renders order receipts
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/your-org/donate-storefront/internal/config"
	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/payment"
	"github.com/your-org/donate-storefront/internal/pkg/format"
)

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"price":         format.Price,
	"date":          format.Date,
	"orderStatus":   func(s order.Status) string { return format.OrderStatus(string(s)) },
	"paymentStatus": func(s order.PaymentStatus) string { return format.PaymentStatus(string(s)) },
	"methodName":    methodName,
}).Parse(receiptTemplate))

// Service handles PDF generation
type Service struct {
	config config.ReceiptConfig
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg config.ReceiptConfig) *Service {
	return &Service{config: cfg, now: time.Now}
}

// ReceiptData is passed to the receipt template
type ReceiptData struct {
	ShopName    string
	SupportLink string
	Customer    string
	IssuedAt    time.Time
	Order       *order.Order
}

// GenerateReceipt renders a PDF receipt for an order
func (s *Service) GenerateReceipt(o *order.Order, customer string) (*bytes.Buffer, error) {
	html, err := s.RenderHTML(o, customer)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA5)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.Encoding.Set("utf-8")
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML renders the receipt markup
func (s *Service) RenderHTML(o *order.Order, customer string) ([]byte, error) {
	if o == nil {
		return nil, fmt.Errorf("order is required")
	}

	data := ReceiptData{
		ShopName:    s.config.ShopName,
		SupportLink: s.config.SupportLink,
		Customer:    customer,
		IssuedAt:    s.now(),
		Order:       o,
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func methodName(id string) string {
	for _, m := range payment.Methods() {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}

const receiptTemplate = `<!DOCTYPE html>
<html lang="ru">
<head>
    <meta charset="UTF-8">
    <title>Чек {{.Order.OrderNumber}}</title>
    <style>
        body { font-family: "DejaVu Sans", Arial, sans-serif; margin: 0; padding: 20px; color: #222; }
        h1 { font-size: 22px; color: #2481cc; margin: 0 0 4px; }
        .meta { color: #666; font-size: 12px; margin-bottom: 20px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 6px 4px; border-bottom: 1px solid #eee; font-size: 13px; text-align: left; }
        .num { text-align: right; }
        .totals td { border: none; }
        .grand { font-weight: bold; font-size: 15px; }
        .footer { margin-top: 24px; font-size: 11px; color: #888; }
    </style>
</head>
<body>
    <h1>{{.ShopName}}</h1>
    <div class="meta">
        Заказ {{.Order.OrderNumber}} от {{date .Order.CreatedAt}}<br>
        Покупатель: {{.Customer}}<br>
        Статус: {{orderStatus .Order.Status}} · Оплата: {{paymentStatus .Order.PaymentStatus}} ({{methodName .Order.PaymentMethod}})
    </div>

    <table>
        <thead>
            <tr><th>Товар</th><th class="num">Кол-во</th><th class="num">Цена</th><th class="num">Сумма</th></tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>{{.Name}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{price .Price}}</td>
                <td class="num">{{price .TotalPrice}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Подытог</td><td class="num">{{price .Order.Subtotal}}</td></tr>
        {{if .Order.DiscountAmount.IsPositive}}
        <tr><td>Скидка{{if .Order.PromoCode}} ({{.Order.PromoCode}}){{end}}</td><td class="num">−{{price .Order.DiscountAmount}}</td></tr>
        {{end}}
        <tr class="grand"><td>Итого</td><td class="num">{{price .Order.TotalPrice}}</td></tr>
    </table>

    <div class="footer">
        Чек сформирован {{date .IssuedAt}}. Поддержка: {{.SupportLink}}
    </div>
</body>
</html>
`
