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

// Package handlers provides the litviz dashboard's HTTP handlers: data
// protocol queries, chart renderings and ranking playback streams.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/ilhamster/litviz/dashboard/metrics"
	querydispatcher "github.com/ilhamster/litviz/query_dispatcher"
	"github.com/ilhamster/litviz/util"
)

// HandlerFunc is a HTTP handler function.
type HandlerFunc func(http.ResponseWriter, *http.Request)

// WrapFunc rewrites a HandlerFunc, e.g. to add authentication or cookies.
type WrapFunc func(HandlerFunc) HandlerFunc

// Handler describes a litviz HTTP handler.  Paths may carry chi URL
// parameters.
type Handler interface {
	HandlersByPath() map[string]func(http.ResponseWriter, *http.Request)
}

// QueryHandler is a Handler for data queries whose handlers may be wrapped.
type QueryHandler interface {
	Handler
	Wrap(...WrapFunc) Handler
}

const (
	dataPath = "/GetData"
	// The form field carrying a data request.
	reqField = "req"
	// Data requests larger than this are rejected.
	maxRequestBytes = 1 << 20
)

type contextKey string

const httpReqKey contextKey = "litviz_http_req"

// HTTPRequestFromContext returns the *http.Request whose data request is
// being handled under ctx, or nil if there is none.
func HTTPRequestFromContext(ctx context.Context) *http.Request {
	req, _ := ctx.Value(httpReqKey).(*http.Request)
	return req
}

// writeJSON sends v as a JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to marshal response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

type queryHandler struct {
	qd       *querydispatcher.QueryDispatcher
	logger   *slog.Logger
	wrappers []WrapFunc
}

// NewQueryHandler returns a QueryHandler answering data requests with the
// provided QueryDispatcher.  A nil logger discards.
func NewQueryHandler(qd *querydispatcher.QueryDispatcher, logger *slog.Logger) QueryHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &queryHandler{
		qd:     qd,
		logger: logger,
	}
}

func (qh *queryHandler) Wrap(wrappers ...WrapFunc) Handler {
	qh.wrappers = append(qh.wrappers, wrappers...)
	return qh
}

// HandlersByPath returns a mapping of HTTP request path to HTTP handler for
// this Handler.
func (qh *queryHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	var h HandlerFunc = qh.getData
	for _, wrap := range qh.wrappers {
		h = wrap(h)
	}
	return map[string]func(http.ResponseWriter, *http.Request){
		dataPath: h,
	}
}

// dataRequest reads the data request from req: either a JSON body, or the
// 'req' form field of a query string or form post.
func dataRequest(req *http.Request) (*util.DataRequest, error) {
	var raw []byte
	if ct, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type")); ct == "application/json" {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxRequestBytes))
		if err != nil {
			return nil, err
		}
		raw = body
	} else {
		if err := req.ParseForm(); err != nil {
			return nil, err
		}
		raw = []byte(req.Form.Get(reqField))
	}
	return util.DataRequestFromJSON(raw)
}

func (qh *queryHandler) getData(w http.ResponseWriter, req *http.Request) {
	dataReq, err := dataRequest(req)
	if err != nil {
		metrics.DataRequestsTotal.WithLabelValues(metrics.ResultError).Inc()
		http.Error(w, "Failed to parse DataRequest: "+err.Error(), http.StatusBadRequest)
		return
	}
	resp, err := qh.qd.HandleDataRequest(context.WithValue(req.Context(), httpReqKey, req), dataReq)
	if err != nil {
		metrics.DataRequestsTotal.WithLabelValues(metrics.ResultError).Inc()
		qh.logger.Warn("data request failed", "series", len(dataReq.SeriesRequests), "error", err)
		http.Error(w, "DataRequest failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.DataRequestsTotal.WithLabelValues(metrics.ResultOK).Inc()
	writeJSON(w, resp)
}
