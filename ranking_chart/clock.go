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

package rankingchart

import "time"

// Ticker delivers ticks at a fixed interval until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates Tickers.  Tests substitute a Clock whose ticks they control.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realTicker struct {
	t *time.Ticker
}

func (rt realTicker) C() <-chan time.Time {
	return rt.t.C
}

func (rt realTicker) Stop() {
	rt.t.Stop()
}

type realClock struct{}

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

// RealClock is the wall clock.
var RealClock Clock = realClock{}
