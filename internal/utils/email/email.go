package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/jalai-llc/bundongsan/internal/config"
	"github.com/jalai-llc/bundongsan/internal/format"
	"github.com/jalai-llc/bundongsan/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Digest is the weekly summary mailed to a user
type Digest struct {
	BuyingPower     models.BuyingPower
	Picks           models.TopPicks
	AffordableCount int
	TotalRecords    int
	MarketRate      *models.MarketRate
}

// SendWelcome sends the registration email
func (s *Sender) SendWelcome(to, username string) error {
	return s.send(s.welcomeEmail(to, username))
}

// SendDigest sends the top-pick digest
func (s *Sender) SendDigest(to, username string, d Digest) error {
	return s.send(s.digestEmail(to, username, d))
}

func (s *Sender) welcomeEmail(to, username string) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Welcome to Bundongsan"

	body := fmt.Sprintf("Dear %s,\n\n", username)
	body += "Your account is ready. Add your income, debts and savings to see how much\n" +
		"home you can afford, then load the market catalog to rank neighborhoods.\n"
	body += "\nBest regards,\nBundongsan"
	e.Text = []byte(body)
	return e
}

func (s *Sender) digestEmail(to, username string, d Digest) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Your weekly housing digest"

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", username)
	if d.MarketRate != nil {
		fmt.Fprintf(&b, "The average 30-year fixed rate was %s on %s.\n",
			format.Percent(d.MarketRate.Rate, 2), d.MarketRate.ObservedOn.Format("2006-01-02"))
	}
	if d.BuyingPower.MaxPrice > 0 {
		fmt.Fprintf(&b, "Your buying power is %s (limited by %s).\n",
			format.Currency(d.BuyingPower.MaxPrice), d.BuyingPower.LimitingConstraint)
	}
	fmt.Fprintf(&b, "%d of %d neighborhoods in your list are affordable.\n\n", d.AffordableCount, d.TotalRecords)

	pick := func(label string, p *models.RankedProperty, detail string) {
		if p != nil {
			fmt.Fprintf(&b, "  %s: %s (%s) at %s, %s\n", label, p.Name, p.Zipcode, format.Currency(p.MedianPrice), detail)
		}
	}
	if d.Picks.BestCapRate != nil {
		pick("Best cap rate", d.Picks.BestCapRate, format.Percent(d.Picks.BestCapRate.Metrics.CapRate))
	}
	if d.Picks.BestCashFlow != nil {
		pick("Best cash flow", d.Picks.BestCashFlow, format.Currency(d.Picks.BestCashFlow.Metrics.MonthlyCashFlow)+"/mo")
	}
	if d.Picks.BestTotalReturn != nil {
		pick("Best total return", d.Picks.BestTotalReturn, format.Percent(d.Picks.BestTotalReturn.Metrics.TotalAnnualReturn))
	}
	if d.Picks.CheapestAffordable != nil {
		pick("Cheapest affordable", d.Picks.CheapestAffordable,
			format.Currency(d.Picks.CheapestAffordable.Affordability.TotalCashNeeded)+" cash needed")
	}

	b.WriteString("\nBest regards,\nBundongsan")
	e.Text = []byte(b.String())
	return e
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}
