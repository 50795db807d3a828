package order

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fjod/growthshop/notification-service/internal/dispatch"
)

var operatorTemplate = template.Must(template.New("operator").Parse(`NEW ORDER RECEIVED: {{.ID}}
----------------------------------
CUSTOMER PROFILE:
Full Name: {{.Info.Name}}
Mobile: {{.Info.Mobile}}
WhatsApp: {{or .Info.WhatsApp "N/A"}}
Email: {{or .Info.Email "N/A"}}
Personal FB Link: {{or .Info.PersonalFbLink "N/A"}}
Promotion Target: {{or .Info.TargetLink "N/A"}}
Notes: {{or .Info.Description "N/A"}}

ORDER CONTENTS:
{{range .Lines}}- {{.Name}} ({{.Quantity}} units) = {{.Subtotal}}{{$.Currency}}
{{end}}
PAYMENT INFORMATION:
Grand Total: {{.Total}}{{.Currency}}
Gateway: {{.Payment.Method}}
Sender Account: {{.Payment.SenderNumber}}
----------------------------------
Sent via {{.Brand}} Automation
`))

var customerTemplate = template.Must(template.New("customer").Parse(`Assalamu Alaikum {{.Info.Name}},

Thank you for choosing {{.Brand}}! Your order has been placed successfully.

Order ID: {{.ID}}
Total Amount: {{.Total}}{{.Currency}}
Payment Method: {{.Payment.Method}}

Our verification team will review your payment of {{.Total}}{{.Currency}} from account {{.Payment.SenderNumber}}.
Once verified, your growth services will be initiated within 1-24 hours.
{{if .SupportPhone}}
If you need immediate assistance, reach us on WhatsApp: {{.SupportPhone}}.
{{end}}
Best Regards,
{{.Brand}}
`))

// Branding holds the sender side of every notification.
type Branding struct {
	Brand        string
	Currency     string
	SupportPhone string
	From         dispatch.Address
	Operator     dispatch.Address
}

type line struct {
	Name     string
	Quantity int
	Subtotal string
}

type view struct {
	ID           string
	Info         Info
	Lines        []line
	Total        string
	Payment      Payment
	Brand        string
	Currency     string
	SupportPhone string
}

// Render builds the operator message followed by the customer message. The
// customer message is left out when the order carries no email address.
func (b Branding) Render(id string, o Order) ([]dispatch.Message, error) {
	v := view{
		ID:           id,
		Info:         o.Info,
		Total:        o.Total.String(),
		Payment:      o.Payment,
		Brand:        b.Brand,
		Currency:     b.Currency,
		SupportPhone: b.SupportPhone,
	}
	for _, item := range o.Cart {
		v.Lines = append(v.Lines, line{Name: item.Name, Quantity: item.Quantity, Subtotal: item.Subtotal().String()})
	}

	operatorBody, err := execute(operatorTemplate, v)
	if err != nil {
		return nil, err
	}
	msgs := []dispatch.Message{{
		Kind:    dispatch.KindOperator,
		OrderID: id,
		From:    b.From,
		To:      b.Operator,
		Subject: fmt.Sprintf("[New Order] %s from %s", id, o.Info.Name),
		Body:    operatorBody,
	}}

	email := strings.TrimSpace(o.Info.Email)
	if email == "" {
		return msgs, nil
	}
	customerBody, err := execute(customerTemplate, v)
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, dispatch.Message{
		Kind:    dispatch.KindCustomer,
		OrderID: id,
		From:    b.From,
		To:      dispatch.Address{Email: email, Name: o.Info.Name},
		Subject: fmt.Sprintf("Your Order Confirmation - %s", id),
		Body:    customerBody,
	})
	return msgs, nil
}

func execute(t *template.Template, v view) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render %s message: %w", t.Name(), err)
	}
	return buf.String(), nil
}
