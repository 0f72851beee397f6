package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MediaDownloader fetches MMS attachment bytes. Implementations report any
// failure uniformly; the handler maps it to a generic error reply.
type MediaDownloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// TwilioDownloader fetches media from Twilio's CDN using account
// credentials over HTTP basic auth.
type TwilioDownloader struct {
	accountSID string
	authToken  string
	httpClient *http.Client
}

// NewTwilioDownloader creates a TwilioDownloader.
func NewTwilioDownloader(accountSID, authToken string) *TwilioDownloader {
	return &TwilioDownloader{
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Download fetches the media at url.
func (d *TwilioDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: build media request: %w", err)
	}
	req.SetBasicAuth(d.accountSID, d.authToken)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat: download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat: download media: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("chat: read media body: %w", err)
	}
	return data, nil
}
