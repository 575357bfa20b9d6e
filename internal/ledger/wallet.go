package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrWalletNotConnected = errors.New("please connect your wallet first")

// Wallet is the signing authority for an address. Implementations sign and
// submit the transaction and return its digest.
type Wallet interface {
	Address() string
	SignAndExecute(ctx context.Context, tx *Transaction) (string, error)
}

// WalletBridge forwards transactions to an external wallet provider over HTTP.
type WalletBridge struct {
	url     string
	address string
	network string
	http    *http.Client
}

func NewWalletBridge(url, address, network string, httpClient *http.Client) *WalletBridge {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WalletBridge{
		url:     strings.TrimRight(url, "/"),
		address: address,
		network: network,
		http:    httpClient,
	}
}

func (w *WalletBridge) Address() string {
	return w.address
}

type signRequest struct {
	Network     string       `json:"network"`
	Sender      string       `json:"sender"`
	Transaction *Transaction `json:"transaction"`
}

type signResponse struct {
	Digest string `json:"digest"`
	Error  string `json:"error"`
}

func (w *WalletBridge) SignAndExecute(ctx context.Context, tx *Transaction) (string, error) {
	tx.Sender = w.address

	body, err := json.Marshal(signRequest{Network: w.network, Sender: w.address, Transaction: tx})
	if err != nil {
		return "", fmt.Errorf("encoding transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url+"/sign-and-execute", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending transaction to wallet: %w", err)
	}
	defer resp.Body.Close()

	var result signResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && result.Error != "" {
			return "", errors.New(result.Error)
		}
		return "", fmt.Errorf("wallet returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding wallet response: %w", decodeErr)
	}
	if result.Error != "" {
		return "", errors.New(result.Error)
	}
	if result.Digest == "" {
		return "", errors.New("wallet returned no transaction digest")
	}

	return result.Digest, nil
}
