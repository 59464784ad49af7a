// Package notify fans call outcomes out to email, SMS and the CRM. Every
// channel is optional and a failing channel never fails the caller.
package notify

import (
	"context"
	"fmt"
	"strings"

	"growify-relay/internal/common/logger"
	"growify-relay/internal/common/zoho"
	"growify-relay/internal/models"
)

const crmLeadSource = "GrowifyAI Demo"

type EmailSender interface {
	SendText(ctx context.Context, to, subject, body string) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type ContactUpserter interface {
	UpsertContact(ctx context.Context, contact *zoho.Contact) (string, bool, error)
}

type Options struct {
	Email EmailSender
	SMS   SMSSender
	CRM   ContactUpserter
	// AlertPhone receives lead-qualified SMS alerts.
	AlertPhone string
	Logger     logger.Logger
}

type Notifier struct {
	email      EmailSender
	sms        SMSSender
	crm        ContactUpserter
	alertPhone string
	logger     logger.Logger
}

func New(opts Options) *Notifier {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Notifier{
		email:      opts.Email,
		sms:        opts.SMS,
		crm:        opts.CRM,
		alertPhone: models.E164(opts.AlertPhone),
		logger:     log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// Enabled reports whether any channel is configured.
func (n *Notifier) Enabled() bool {
	return n.email != nil || n.sms != nil || n.crm != nil
}

// AppointmentBooked emails the customer a confirmation and records them as
// a CRM contact.
func (n *Notifier) AppointmentBooked(ctx context.Context, event *models.CallbackEvent) {
	customer := event.CustomerContact()
	fields := map[string]interface{}{"sessionId": event.SessionID}

	if n.email != nil && customer.Email != "" {
		id, err := n.email.SendText(ctx, customer.Email, "Your GrowifyAI demo appointment is confirmed",
			appointmentEmailBody(customer, event.Event))
		if err != nil {
			n.logger.Warn("Appointment confirmation email failed", withErr(fields, err))
		} else {
			n.logger.Info("Appointment confirmation email sent", with(fields, "messageId", id))
		}
	}

	if n.crm != nil && (customer.Email != "" || customer.Phone != "") {
		first, last := zoho.SplitName(customer.Name)
		id, created, err := n.crm.UpsertContact(ctx, &zoho.Contact{
			Email:       customer.Email,
			FirstName:   first,
			LastName:    last,
			Phone:       customer.Phone,
			Source:      crmLeadSource,
			Description: "Booked an appointment during session " + event.SessionID,
		})
		if err != nil {
			n.logger.Warn("CRM contact upsert failed", withErr(fields, err))
		} else {
			n.logger.Info("CRM contact recorded", with(with(fields, "contactId", id), "created", created))
		}
	}
}

// LeadQualified texts the sales alert number about a completed call.
func (n *Notifier) LeadQualified(ctx context.Context, results *models.FinalResults, customer models.Customer) {
	if n.sms == nil || n.alertPhone == "" {
		return
	}

	fields := map[string]interface{}{"sessionId": results.SessionID}
	id, err := n.sms.SendSMS(ctx, n.alertPhone, leadAlertText(results, customer))
	if err != nil {
		n.logger.Warn("Lead alert SMS failed", withErr(fields, err))
		return
	}
	n.logger.Info("Lead alert SMS sent", with(fields, "messageId", id))
}

func appointmentEmailBody(c models.Customer, event interface{}) string {
	var b strings.Builder
	name := c.Name
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for trying the GrowifyAI appointment booking agent. Your appointment is confirmed.\n", name)

	if details, ok := event.(map[string]interface{}); ok {
		for _, key := range []string{"title", "date", "time", "startTime", "location"} {
			if v, ok := details[key]; ok && v != nil {
				fmt.Fprintf(&b, "\n%s: %v", key, v)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\nThe GrowifyAI team\n")
	return b.String()
}

func leadAlertText(r *models.FinalResults, c models.Customer) string {
	who := c.Name
	if who == "" {
		who = "Unknown caller"
	}
	if c.Phone != "" {
		who += " (" + models.FormatPhoneNumber(c.Phone) + ")"
	}
	return fmt.Sprintf("GrowifyAI lead qualified: %s, score %.0f/100, session %s", who, r.LeadScore, r.SessionID)
}

func with(fields map[string]interface{}, k string, v interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for key, val := range fields {
		out[key] = val
	}
	out[k] = v
	return out
}

func withErr(fields map[string]interface{}, err error) map[string]interface{} {
	return with(fields, "error", err.Error())
}
