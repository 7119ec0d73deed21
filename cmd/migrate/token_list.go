package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gojek/heimdall/v7/httpclient"
)

const (
	tokenListTimeout    = 15 * time.Second
	tokenListRetryCount = 2
)

// readTokenList loads a token list from url when set, otherwise from file.
func readTokenList(ctx context.Context, file, url string) ([]byte, error) {
	if url == "" {
		if file == "" {
			return nil, errors.New("either --file or --url is required")
		}
		return os.ReadFile(file)
	}

	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(tokenListTimeout),
		httpclient.WithRetryCount(tokenListRetryCount),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request error: %s", err.Error())
	}
	req.Header.Set("accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %s", err.Error())
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response error: %s", err.Error())
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("request error with status code %d: %s", res.StatusCode, body)
	}
	return body, nil
}
