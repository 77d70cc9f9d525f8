/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package datasource

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// maxResourceBytes bounds the size of a fetched resource.
const maxResourceBytes = 64 << 20

// Fetcher describes types capable of fetching dataset resources by path.
type Fetcher interface {
	// Fetch returns the contents of the resource at the provided
	// slash-separated path, or an error if it cannot be fetched.
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// FileFetcher fetches resources from a directory tree.
type FileFetcher struct {
	fsys fs.FS
}

// NewFileFetcher returns a FileFetcher reading resources beneath root.
func NewFileFetcher(root string) *FileFetcher {
	return &FileFetcher{fsys: os.DirFS(root)}
}

// NewFSFetcher returns a FileFetcher reading resources from fsys.
func NewFSFetcher(fsys fs.FS) *FileFetcher {
	return &FileFetcher{fsys: fsys}
}

// Fetch is part of the Fetcher interface.  Paths may not escape the root.
func (ff *FileFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(path, "/")
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid resource path '%s'", path)
	}
	return fs.ReadFile(ff.fsys, name)
}

// HTTPFetcher fetches resources with GET requests relative to a base URL.
// Transport failures and 5xx responses are retried.
type HTTPFetcher struct {
	client *resty.Client
}

const (
	fetchRetries   = 2
	fetchRetryWait = 100 * time.Millisecond
)

// NewHTTPFetcher returns an HTTPFetcher resolving paths against baseURL,
// which must be absolute.  Each attempt is bounded by timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) (*HTTPFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL '%s': %w", baseURL, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base URL '%s' is not absolute", baseURL)
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(fetchRetries).
		SetRetryWaitTime(fetchRetryWait).
		SetResponseBodyLimit(maxResourceBytes).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
		})
	return &HTTPFetcher{client: client}, nil
}

// Fetch is part of the Fetcher interface.
func (hf *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	resp, err := hf.client.R().
		SetContext(ctx).
		Get(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("fetching '%s': %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching '%s': %s", path, resp.Status())
	}
	return resp.Body(), nil
}
