package advice

import (
	"context"
	"sync"
)

type stubResult struct {
	text string
	err  error
}

// stubUpstream replays scripted results in order and records every request.
// Once the script is exhausted the last result repeats.
type stubUpstream struct {
	mu       sync.Mutex
	script   []stubResult
	requests []Request
}

func newStub(results ...stubResult) *stubUpstream {
	return &stubUpstream{script: results}
}

func (s *stubUpstream) Generate(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if len(s.script) == 0 {
		return "ok", nil
	}
	r := s.script[0]
	if len(s.script) > 1 {
		s.script = s.script[1:]
	}
	return r.text, r.err
}

func (s *stubUpstream) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubUpstream) models() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, r.Model)
	}
	return out
}

func (s *stubUpstream) call(ctx context.Context, model string) (string, error) {
	return s.Generate(ctx, Request{Model: model})
}

func ok(text string) stubResult { return stubResult{text: text} }

func fail(status int) stubResult {
	return stubResult{err: &UpstreamError{StatusCode: status, Message: "scripted failure"}}
}
