// Package ratelimit implements the ratelimit stage (a domain-stack
// addition beyond the distilled spec — see SPEC_FULL.md §4.J),
// a pure-passthrough stage that throttles message throughput to a fixed
// rate using golang.org/x/time/rate, grounded on WessleyAI-wessley-mvp's
// and wyf-ACCEPT-eth2030's use of the same package for outbound shaping.
package ratelimit

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func init() {
	factory.MustRegister("ratelimit", newRateLimit)
}

type rateLimit struct {
	limiter *rate.Limiter
	logger  *slog.Logger
}

// newRateLimit takes a single option: the number of messages per second
// to allow through, as an integer or decimal (e.g. "ratelimit:50").
func newRateLimit(_ int, options string, logger *slog.Logger) (stage.Stage, error) {
	perSecond, err := strconv.ParseFloat(options, 64)
	if err != nil || perSecond <= 0 {
		return nil, &stage.InvalidOptionError{Stage: "ratelimit", Option: options, Reason: "must be a positive number of messages per second"}
	}
	return &rateLimit{
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  logger,
	}, nil
}

// Push blocks until the limiter admits one message, then forwards it
// unchanged. A message never splits across the rate limit: one Push call
// is one token, regardless of byte length.
func (s *rateLimit) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	if err := s.limiter.Wait(context.Background()); err != nil {
		return nil, nil, &stage.InvalidDataError{Stage: "ratelimit", Reason: err.Error()}
	}
	return input, nil, nil
}
