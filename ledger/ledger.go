// Package ledger is the client for the remote kudos ledger API.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kudoslabs/discord-kudos-bot/kudos"
)

// insufficientFundsMessage is the exact message body the ledger pairs with a
// 400 status when the sender's balance cannot cover a transfer. Nothing
// outside classify may depend on this string.
const insufficientFundsMessage = "Not enough kudos."

const maxErrorBody = 4 << 10

// Client calls the kudos ledger API. Requests are authenticated per call with
// the acting user's credential in the apikey header.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Transfer moves amount kudos from the credential's owner to the named
// recipient. It returns kudos.ErrInsufficientFunds when the ledger rejects
// the transfer for lack of balance and a plain error for anything else. One
// call is one request; the client never retries.
func (c *Client) Transfer(ctx context.Context, recipientUsername string, amount int, credential string) error {
	type request struct {
		Username string `json:"username"`
		Amount   int    `json:"amount"`
	}

	body, err := json.Marshal(request{
		Username: recipientUsername,
		Amount:   amount,
	})
	if err != nil {
		return fmt.Errorf("encode transfer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/kudos/transfer", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", credential)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("post transfer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return classify(resp)
}

// Balance returns the credential owner's current kudos balance.
func (c *Client) Balance(ctx context.Context, credential string) (int, error) {
	type response struct {
		Balance int `json:"balance"`
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/kudos/balance", nil)
	if err != nil {
		return 0, fmt.Errorf("build balance request: %w", err)
	}
	req.Header.Set("apikey", credential)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("ledger responded %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode balance: %w", err)
	}
	return body.Balance, nil
}

// classify is the single place that knows how the ledger spells an
// insufficient-balance rejection.
func classify(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Message string `json:"message"`
	}
	// A non-JSON error body just stays unclassified.
	_ = json.Unmarshal(raw, &body)

	if resp.StatusCode == http.StatusBadRequest && body.Message == insufficientFundsMessage {
		return fmt.Errorf("transfer rejected: %w", kudos.ErrInsufficientFunds)
	}
	return fmt.Errorf("ledger responded %d: %s", resp.StatusCode, body.Message)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
