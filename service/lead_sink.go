package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cpa-savings/domain"
)

// ErrSinkDisabled is returned when no lead endpoint is configured.
var ErrSinkDisabled = errors.New("lead delivery is not configured")

// LeadSink delivers a lead to wherever sales follow-up happens.
type LeadSink interface {
	Deliver(ctx context.Context, lead domain.Lead) error
}

// leadPayload is the flat JSON object the spreadsheet webhook expects.
type leadPayload struct {
	FirstName               string  `json:"firstName"`
	LastName                string  `json:"lastName"`
	Email                   string  `json:"email"`
	BaselineAnnualCost      float64 `json:"baselineAnnualCost"`
	OptimizedAnnualCost     float64 `json:"optimizedAnnualCost"`
	CostReduction           float64 `json:"costReduction"`
	EstimatedEfficiencyGain float64 `json:"estimatedEfficiencyGain"`
	TotalSavings            float64 `json:"totalSavings"`
	PercentageSavings       float64 `json:"percentageSavings"`
}

func newLeadPayload(lead domain.Lead) leadPayload {
	return leadPayload{
		FirstName:               lead.Identity.FirstName,
		LastName:                lead.Identity.LastName,
		Email:                   lead.Identity.Email,
		BaselineAnnualCost:      lead.Result.BaselineAnnualCost,
		OptimizedAnnualCost:     lead.Result.OptimizedAnnualCost,
		CostReduction:           lead.Result.CostReduction,
		EstimatedEfficiencyGain: lead.Result.EstimatedEfficiencyGain,
		TotalSavings:            lead.Result.TotalSavings,
		PercentageSavings:       lead.Result.PercentageSavings,
	}
}

type WebhookSink struct {
	url        string
	plainText  bool
	httpClient *http.Client
}

// NewWebhookSink posts leads to url. With plainText set the JSON body is
// sent as text/plain, which endpoints such as Apps Script web apps require.
func NewWebhookSink(url string, plainText bool, timeout time.Duration) *WebhookSink {
	return &WebhookSink{
		url:       url,
		plainText: plainText,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *WebhookSink) Deliver(ctx context.Context, lead domain.Lead) error {
	jsonData, err := json.Marshal(newLeadPayload(lead))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}

	if s.plainText {
		req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	} else {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused; the body itself is ignored.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("lead endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopSink is used when no webhook is configured.
type NoopSink struct{}

func (NoopSink) Deliver(context.Context, domain.Lead) error {
	return ErrSinkDisabled
}
