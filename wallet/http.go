/*
Copyright 2025 GeoPredict Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package wallet

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/geopredict/relay/internal/request"
)

// HTTPAdapter drives a wallet bridge over its REST interface. A bridge is a
// sidecar that holds the actual wallet session; this adapter only translates
// its responses into the Status, History and Error shapes the resolver
// understands.
type HTTPAdapter struct {
	api string
}

// NewHTTPAdapter builds an adapter for the given bridge base URL.
func NewHTTPAdapter(api string) *HTTPAdapter {
	return &HTTPAdapter{api: strings.TrimRight(api, "/")}
}

func (a *HTTPAdapter) TransactionStatus(ctx context.Context, walletTxID string) (Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/transactions/%s/status", a.api, url.PathEscape(walletTxID)), nil)
	if err != nil {
		return Status{}, err
	}

	var status Status
	resp, err := request.Call(req, &status)
	if err != nil {
		return Status{}, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return Status{}, NewError(CodeNotFound, "transaction not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Status{}, fmt.Errorf("wallet bridge returned %d", resp.StatusCode)
	}
	return status, nil
}

func (a *HTTPAdapter) RequestTransactionHistory(ctx context.Context, program string) (History, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/history?program=%s", a.api, url.QueryEscape(program)), nil)
	if err != nil {
		return History{}, err
	}

	var history History
	resp, err := request.Call(req, &history)
	if err != nil {
		return History{}, err
	}
	switch resp.StatusCode {
	case http.StatusForbidden:
		return History{}, NewError(CodePermissionDenied, "history permission not granted")
	case http.StatusNotImplemented:
		return History{}, NewError(CodeUnsupported, "wallet does not support onchain history")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return History{}, fmt.Errorf("wallet bridge returned %d", resp.StatusCode)
	}
	return history, nil
}

func (a *HTTPAdapter) ExecuteTransaction(ctx context.Context, execReq ExecuteRequest) (string, error) {
	payload, err := request.ToJsonReq(&execReq)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.api+"/execute", payload)
	if err != nil {
		return "", err
	}

	var result struct {
		TransactionID string `json:"transaction_id"`
		Error         string `json:"error,omitempty"`
	}
	resp, err := request.Call(req, &result)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if result.Error != "" {
			return "", fmt.Errorf("wallet bridge: %s", result.Error)
		}
		return "", fmt.Errorf("wallet bridge returned %d", resp.StatusCode)
	}
	if result.TransactionID == "" {
		return "", NewError(CodeUnknown, "wallet bridge returned no transaction id")
	}
	return result.TransactionID, nil
}
