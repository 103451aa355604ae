// Copyright 2023 Gridscope

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package terna

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

type contextKey int

const (
	clientContextKey contextKey = iota
)

// TokenURL is the default OAuth token endpoint. It may be overwritten in
// tests before creating a new client.
var TokenURL = "https://api.terna.it/transparency/oauth/accessToken"

// URL is the default base URL of the data API. It may be overwritten in tests
// before creating a new client.
var URL = "https://api.terna.it/transparency/v1.0"

// Client for querying Transparency API endpoints. It holds only the
// credential pair and the HTTP transport, and is immutable after
// construction; a fresh access token is requested for every call.
type Client struct {
	baseURL  string
	tokenURL string
	key      string // API key, the OAuth client ID
	secret   string // API secret, the OAuth client secret
	http     *resty.Client
}

// NewClient creates a new client for the given API key and secret.
func NewClient(key, secret string) *Client {
	return &Client{
		baseURL:  URL,
		tokenURL: TokenURL,
		key:      key,
		secret:   secret,
		http:     resty.New(),
	}
}

// GetClient extracts the Client from the context, if any.
func GetClient(ctx context.Context) *Client {
	c, ok := ctx.Value(clientContextKey).(*Client)
	if !ok {
		return nil
	}
	return c
}

// UseClient creates a new client based on the credential pair and injects it
// into the context.
func UseClient(ctx context.Context, key, secret string) context.Context {
	return context.WithValue(ctx, clientContextKey, NewClient(key, secret))
}

// accessToken is the JSON schema of the token endpoint response.
type accessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// requestToken exchanges the credential pair for a short-lived access token
// via the OAuth client-credentials grant.
func (c *Client) requestToken(ctx context.Context) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     c.key,
			"client_secret": c.secret,
			"grant_type":    "client_credentials",
		}).
		Post(c.tokenURL)
	if err != nil {
		return "", &RequestError{Err: errors.Annotate(err, "token request failed")}
	}
	if resp.IsError() {
		return "", &RequestError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       resp.Body(),
		}
	}
	var tok accessToken
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return "", schemaError(resp.Body(), "token response is not a JSON object")
	}
	if tok.AccessToken == "" {
		return "", schemaError(resp.Body(), "token response has no access_token")
	}
	return tok.AccessToken, nil
}

// get issues an authenticated GET for the given item and returns the raw
// response body.
func (c *Client) get(ctx context.Context, item string, query url.Values) ([]byte, error) {
	token, err := c.requestToken(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "failed to obtain access token")
	}
	q := make(url.Values, len(query)+1)
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("access_token", token)
	uri := c.baseURL + "/" + item
	logging.Debugf(ctx, "GET %s", uri)
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q).
		Get(uri)
	if err != nil {
		return nil, &RequestError{Err: errors.Annotate(err, "GET %s failed", item)}
	}
	if resp.IsError() {
		return nil, &RequestError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       resp.Body(),
		}
	}
	return resp.Body(), nil
}
