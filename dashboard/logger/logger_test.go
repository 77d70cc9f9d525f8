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

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	for _, test := range []struct {
		description string
		level       string
		wantLines   int
	}{
		{"debug", "debug", 3},
		{"default", "", 2},
		{"warn", "WARN", 1},
		{"error", "error", 0},
	} {
		t.Run(test.description, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf, test.level, "text")
			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			if got := strings.Count(buf.String(), "\n"); got != test.wantLines {
				t.Errorf("logged %d lines, want %d:\n%s", got, test.wantLines, buf.String())
			}
		})
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("fetched", "path", "text-stats.json")
	got := map[string]any{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("log line %q is not JSON: %s", buf.String(), err)
	}
	if got["msg"] != "fetched" || got["path"] != "text-stats.json" {
		t.Errorf("unexpected log record %v", got)
	}
}
