package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

var ErrChannelDisabled = errors.New("notification channel not configured")

type EmailSender interface {
	SendEmail(toEmail, toName, subject, plainText, html string) error
}

type SMSSender interface {
	SendSMS(toNumber, body string) error
}

type NotifyConfig struct {
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
}

// NotifyService sends email through SendGrid and SMS through Twilio. A channel whose
// credentials are missing returns ErrChannelDisabled.
type NotifyService struct {
	cfg    NotifyConfig
	email  *sendgrid.Client
	twilio *twilio.RestClient
	log    *zap.Logger
}

func NewNotifyService(cfg NotifyConfig, log *zap.Logger) *NotifyService {
	s := &NotifyService{cfg: cfg, log: log}
	if cfg.SendGridAPIKey != "" && cfg.SendGridFromEmail != "" {
		s.email = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	} else {
		log.Warn("SENDGRID_API_KEY or SENDGRID_FROM_EMAIL not set, emails are disabled")
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		s.twilio = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   cfg.TwilioAccountSID,
			Password:   cfg.TwilioAuthToken,
			AccountSid: cfg.TwilioAccountSID,
		})
	} else {
		log.Warn("Twilio credentials not set, SMS are disabled")
	}
	return s
}

func (s *NotifyService) SendEmail(toEmail, toName, subject, plainText, html string) error {
	if s.email == nil {
		return ErrChannelDisabled
	}
	from := mail.NewEmail(s.cfg.SendGridFromName, s.cfg.SendGridFromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, html)

	response, err := s.email.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", toEmail, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	s.log.Debug("email sent", zap.String("to", toEmail), zap.String("subject", subject), zap.Int("status", response.StatusCode))
	return nil
}

func (s *NotifyService) SendSMS(toNumber, body string) error {
	if s.twilio == nil {
		return ErrChannelDisabled
	}
	if !strings.HasPrefix(toNumber, "+") {
		s.log.Warn("destination number is not E.164, SMS may fail", zap.String("to", toNumber))
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.cfg.TwilioFromNumber)
	params.SetBody(body)

	resp, err := s.twilio.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", toNumber, err)
	}
	if resp != nil && resp.Sid != nil {
		s.log.Debug("sms sent", zap.String("to", toNumber), zap.String("sid", *resp.Sid))
	}
	return nil
}
