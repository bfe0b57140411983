package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

// LCDClient talks to the checkmark contract through a chain LCD endpoint for
// queries and a signer relay for executes. The relay holds the assigner key;
// this process never touches signing material.
type LCDClient struct {
	lcdURL          string
	relayURL        string
	contractAddress string
	client          *http.Client
}

// NewLCD constructs an LCD-backed ledger client. The client is process-scoped
// and long-lived; connection reuse comes from the shared http.Transport.
func NewLCD(lcdURL, relayURL, contractAddress string) *LCDClient {
	return &LCDClient{
		lcdURL:          lcdURL,
		relayURL:        relayURL,
		contractAddress: contractAddress,
		client:          &http.Client{Timeout: 15 * time.Second},
	}
}

var _ Ledger = (*LCDClient)(nil)

type getCheckmarkResponse struct {
	CheckmarkID *string `json:"checkmark_id"`
}

type getAddressResponse struct {
	Address *string `json:"address"`
}

type bannedResponse struct {
	Banned bool `json:"banned"`
}

func (c *LCDClient) Checkmark(ctx context.Context, address string) (string, bool, error) {
	var resp getCheckmarkResponse
	query := map[string]any{"get_checkmark": map[string]any{"address": address}}
	if err := c.smartQuery(ctx, c.contractAddress, query, &resp); err != nil {
		return "", false, err
	}
	if resp.CheckmarkID == nil || *resp.CheckmarkID == "" {
		return "", false, nil
	}
	return *resp.CheckmarkID, true, nil
}

func (c *LCDClient) Address(ctx context.Context, checkmarkID string) (string, bool, error) {
	var resp getAddressResponse
	query := map[string]any{"get_address": map[string]any{"checkmark_id": checkmarkID}}
	if err := c.smartQuery(ctx, c.contractAddress, query, &resp); err != nil {
		return "", false, err
	}
	if resp.Address == nil || *resp.Address == "" {
		return "", false, nil
	}
	return *resp.Address, true, nil
}

func (c *LCDClient) Banned(ctx context.Context, checkmarkID string) (bool, error) {
	var resp bannedResponse
	query := map[string]any{"checkmark_banned": map[string]any{"checkmark_id": checkmarkID}}
	if err := c.smartQuery(ctx, c.contractAddress, query, &resp); err != nil {
		return false, err
	}
	return resp.Banned, nil
}

func (c *LCDClient) Assign(ctx context.Context, checkmarkID, address string) error {
	return c.execute(ctx, map[string]any{
		"assign": map[string]any{"checkmark_id": checkmarkID, "address": address},
	})
}

func (c *LCDClient) Revoke(ctx context.Context, checkmarkID string) error {
	return c.execute(ctx, map[string]any{
		"revoke_checkmark": map[string]any{"checkmark_id": checkmarkID},
	})
}

func (c *LCDClient) SetBan(ctx context.Context, checkmarkID string, banned bool) error {
	return c.execute(ctx, map[string]any{
		"update_checkmark_ban": map[string]any{"checkmark_id": checkmarkID, "ban": banned},
	})
}

// smartQuery issues a CosmWasm smart query through the LCD REST API. The query
// message is base64-encoded into the path; the response wraps the contract's
// JSON in a "data" envelope.
func (c *LCDClient) smartQuery(ctx context.Context, contract string, query any, out any) error {
	msg, err := json.Marshal(query)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal contract query")
	}

	url := fmt.Sprintf("%s/cosmwasm/wasm/v1/contract/%s/smart/%s",
		c.lcdURL, contract, base64.StdEncoding.EncodeToString(msg))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build contract query request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "contract query failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return dErrors.Wrap(
			fmt.Errorf("lcd responded %d: %s", resp.StatusCode, body),
			dErrors.CodeUpstreamUnavailable, "contract query error")
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "decode contract query response")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "decode contract query data")
	}
	return nil
}

// execute forwards an execute msg to the signer relay, which signs and
// broadcasts it as the assigner and waits for inclusion.
func (c *LCDClient) execute(ctx context.Context, msg any) error {
	payload, err := json.Marshal(map[string]any{
		"contract": c.contractAddress,
		"msg":      msg,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal execute msg")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL+"/execute", bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build execute request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "execute request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return dErrors.Wrap(
			fmt.Errorf("signer relay responded %d: %s", resp.StatusCode, body),
			dErrors.CodeUpstreamUnavailable, "execute error")
	}
	return nil
}
