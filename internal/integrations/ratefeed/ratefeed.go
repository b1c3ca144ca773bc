package ratefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/jalai-llc/bundongsan/internal/models"
)

const source = "fred:MORTGAGE30US"

// Client reads the weekly 30-year fixed mortgage rate from an XML observations feed
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new rate feed client
func NewClient(url string, log *logrus.Logger) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// sendRequest fetches the raw feed
func (c *Client) sendRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("Rate feed XML response: %d bytes", len(body))
	return body, nil
}

// parseXMLResponse extracts the newest observation with a numeric value.
// Missing observations are published as ".".
func parseXMLResponse(rawBody []byte) (models.MarketRate, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return models.MarketRate{}, fmt.Errorf("failed to parse XML: %w", err)
	}

	observations := doc.FindElements("//observation")
	if len(observations) == 0 {
		return models.MarketRate{}, fmt.Errorf("no observations found in XML")
	}

	var latest models.MarketRate
	found := false
	for _, obs := range observations {
		date, err := time.Parse("2006-01-02", obs.SelectAttrValue("date", ""))
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(obs.SelectAttrValue("value", ".")), 64)
		if err != nil || value <= 0 {
			continue
		}
		if !found || date.After(latest.ObservedOn) {
			latest = models.MarketRate{ObservedOn: date, Rate: value / 100, Source: source}
			found = true
		}
	}
	if !found {
		return models.MarketRate{}, fmt.Errorf("no numeric observations found in XML")
	}
	return latest, nil
}

// LatestRate retrieves the most recent market rate as a fraction
func (c *Client) LatestRate(ctx context.Context) (models.MarketRate, error) {
	body, err := c.sendRequest(ctx)
	if err != nil {
		return models.MarketRate{}, err
	}

	rate, err := parseXMLResponse(body)
	if err != nil {
		return models.MarketRate{}, err
	}

	c.log.Infof("Retrieved market rate: %.2f%% observed %s", rate.Rate*100, rate.ObservedOn.Format("2006-01-02"))
	return rate, nil
}
