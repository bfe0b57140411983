package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

// Expected describes the fee one verification session costs.
type Expected struct {
	Amount string
	Denom  string
	// CW20 selects the token-contract denom variant instead of native.
	CW20 bool
}

// ReceiptClient queries the cw-receipt contract through the chain LCD for the
// totals paid to a session's hash and matches them against the expected fee.
type ReceiptClient struct {
	lcdURL          string
	contractAddress string
	expected        Expected
	client          *http.Client
}

// NewReceipt constructs a cw-receipt payment gate.
func NewReceipt(lcdURL, contractAddress string, expected Expected) *ReceiptClient {
	return &ReceiptClient{
		lcdURL:          lcdURL,
		contractAddress: contractAddress,
		expected:        expected,
		client:          &http.Client{Timeout: 15 * time.Second},
	}
}

var _ Gate = (*ReceiptClient)(nil)

// checkedDenom mirrors the contract's CheckedDenom: exactly one of Native or
// CW20 is set.
type checkedDenom struct {
	Native string `json:"native,omitempty"`
	CW20   string `json:"cw20,omitempty"`
}

type total struct {
	Denom  checkedDenom `json:"denom"`
	Amount string       `json:"amount"`
}

type listTotalsResponse struct {
	Totals []total `json:"totals"`
}

func (c *ReceiptClient) IsPaidFor(ctx context.Context, hashedSessionID string) (bool, error) {
	query := map[string]any{
		"list_totals_paid_to_id": map[string]any{"id": hashedSessionID},
	}
	msg, err := json.Marshal(query)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "marshal payment query")
	}

	url := fmt.Sprintf("%s/cosmwasm/wasm/v1/contract/%s/smart/%s",
		c.lcdURL, c.contractAddress, base64.StdEncoding.EncodeToString(msg))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "build payment query request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "payment query failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, dErrors.Wrap(
			fmt.Errorf("lcd responded %d: %s", resp.StatusCode, body),
			dErrors.CodeUpstreamUnavailable, "payment query error")
	}

	var envelope struct {
		Data listTotalsResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "decode payment query response")
	}

	for _, t := range envelope.Data.Totals {
		denom := t.Denom.Native
		if c.expected.CW20 {
			denom = t.Denom.CW20
		}
		if denom == c.expected.Denom && t.Amount == c.expected.Amount {
			return true, nil
		}
	}
	return false, nil
}
