package testkit

import (
	"context"
	"encoding/json"
	"sync"

	"statflow/domain/analysis"
	"statflow/ports"
)

// Response is one scripted compute outcome
type Response struct {
	Body string
	Plot string
	Err  error
}

// FakeCompute is a scripted ports.ComputeClient. Responses are consumed in
// order and the last one repeats. When Gate is set each call blocks until
// the gate yields or the context ends.
type FakeCompute struct {
	Responses []Response
	Gate      chan struct{}
	// Entered, when set, receives a value once a call is in flight
	Entered chan struct{}

	mu       sync.Mutex
	requests []ports.ComputeRequest
}

var _ ports.ComputeClient = (*FakeCompute)(nil)

// Compute records the request and returns the next scripted response
func (f *FakeCompute) Compute(ctx context.Context, req ports.ComputeRequest) (*analysis.Envelope, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	f.mu.Unlock()

	if f.Entered != nil {
		f.Entered <- struct{}{}
	}
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(f.Responses) == 0 {
		return nil, context.Canceled
	}
	resp := f.Responses[len(f.Responses)-1]
	if n <= len(f.Responses) {
		resp = f.Responses[n-1]
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	result, err := analysis.Decode(req.Kind, json.RawMessage(resp.Body))
	if err != nil {
		return nil, err
	}
	return &analysis.Envelope{Result: result, Plot: resp.Plot}, nil
}

// Requests returns the requests seen so far
func (f *FakeCompute) Requests() []ports.ComputeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.ComputeRequest(nil), f.requests...)
}

// Calls returns how many calls were made
func (f *FakeCompute) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// EventRecorder is a ports.EventPublisher that keeps every event
type EventRecorder struct {
	mu     sync.Mutex
	events []ports.ScreenEvent
}

// Publish records the event
func (r *EventRecorder) Publish(event ports.ScreenEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Types returns the recorded event types in order
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType
	}
	return out
}

// Last returns the most recent event
func (r *EventRecorder) Last() (ports.ScreenEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return ports.ScreenEvent{}, false
	}
	return r.events[len(r.events)-1], true
}
