package email

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/jalai-llc/bundongsan/internal/config"
	"github.com/jalai-llc/bundongsan/internal/models"
)

func testSender() *Sender {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewSender(&config.Config{SenderEmail: "noreply@example.com", SMTPHost: "127.0.0.1", SMTPPort: "1"}, l)
}

func TestWelcomeEmail(t *testing.T) {
	e := testSender().welcomeEmail("kim@example.com", "kim")
	assert.Equal(t, "noreply@example.com", e.From)
	assert.Equal(t, []string{"kim@example.com"}, e.To)
	assert.Contains(t, string(e.Text), "Dear kim,")
}

func TestDigestEmail(t *testing.T) {
	cheap := &models.RankedProperty{
		Property:      models.Property{Name: "Pasadena", Zipcode: "91101", MedianPrice: 300000},
		Affordability: models.AffordabilityResult{TotalCashNeeded: 69000},
	}
	cheap.Metrics.CapRate = 0.0781
	d := Digest{
		BuyingPower:     models.BuyingPower{MaxPrice: 429308, LimitingConstraint: models.ConstraintIncome},
		Picks:           models.TopPicks{BestCapRate: cheap, CheapestAffordable: cheap},
		AffordableCount: 2,
		TotalRecords:    4,
		MarketRate:      &models.MarketRate{ObservedOn: time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC), Rate: 0.0627},
	}

	text := string(testSender().digestEmail("kim@example.com", "kim", d).Text)
	assert.Contains(t, text, "The average 30-year fixed rate was 6.27% on 2026-10-08.")
	assert.Contains(t, text, "Your buying power is $429,308 (limited by income).")
	assert.Contains(t, text, "2 of 4 neighborhoods")
	assert.Contains(t, text, "Best cap rate: Pasadena (91101) at $300,000, 7.8%")
	assert.Contains(t, text, "Cheapest affordable: Pasadena (91101) at $300,000, $69,000 cash needed")
	assert.NotContains(t, text, "Best cash flow")
}

func TestSendFailure(t *testing.T) {
	err := testSender().SendWelcome("kim@example.com", "kim")
	assert.ErrorContains(t, err, "failed to send email")
}
