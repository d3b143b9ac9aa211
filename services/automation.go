package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"text/template"

	"github.com/HSouheill/salon_backend/models"
)

// Recipient is who an automation message goes to
type Recipient struct {
	Name  string
	Email string
	Phone string
}

// AutomationDeps are the senders and counter store an automation run uses
type AutomationDeps struct {
	Email EmailSender
	SMS   SMSSender
	Store AutomationStore
}

// TriggerAutomations fires every active rule registered for event and returns
// how many messages were sent. The rules are passed in by the caller; there is
// no package-level rule table. Each successful send bumps the rule's counter.
func TriggerAutomations(ctx context.Context, event string, data map[string]string, to Recipient, rules []models.AutomationRule, deps AutomationDeps) int {
	sent := 0
	for _, rule := range rules {
		if !rule.IsActive || rule.Event != event {
			continue
		}

		body, err := renderTemplate(rule.Template, data)
		if err != nil {
			log.Printf("automation skipped rule=%q event=%s reason=template_error err=%v", rule.Name, event, err)
			continue
		}

		switch rule.Channel {
		case models.AutomationChannelEmail:
			if deps.Email == nil || to.Email == "" {
				continue
			}
			subject, err := renderTemplate(rule.Subject, data)
			if err != nil || subject == "" {
				subject = rule.Name
			}
			err = deps.Email.Send(to.Email, subject, body)
			if err != nil {
				log.Printf("automation email failed rule=%q to=%s err=%v", rule.Name, to.Email, err)
				continue
			}
		case models.AutomationChannelSMS:
			if deps.SMS == nil || to.Phone == "" {
				continue
			}
			if err := deps.SMS.SendMessage(to.Phone, body); err != nil {
				log.Printf("automation sms failed rule=%q to=%s err=%v", rule.Name, to.Phone, err)
				continue
			}
		default:
			log.Printf("automation skipped rule=%q reason=unknown_channel channel=%q", rule.Name, rule.Channel)
			continue
		}

		sent++
		if deps.Store != nil && !rule.ID.IsZero() {
			if err := deps.Store.IncrementRuleActivation(ctx, rule.ID); err != nil {
				log.Printf("Warning: failed to bump activation count rule=%q err=%v", rule.Name, err)
			}
		}
	}
	return sent
}

func renderTemplate(text string, data map[string]string) (string, error) {
	if text == "" {
		return "", nil
	}
	tmpl, err := template.New("automation").Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}
