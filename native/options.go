package native

import (
	"errors"
	"time"

	"github.com/joeycumines/logiface"
)

// options holds configuration for Alloc.
type options struct {
	logger   *logiface.Logger[logiface.Event]
	dropRate map[time.Duration]int
}

// Option configures a ViewDispatcher.
type Option interface {
	applyOption(*options) error
}

type optionImpl struct {
	applyOptionFunc func(*options) error
}

func (o *optionImpl) applyOption(opts *options) error {
	return o.applyOptionFunc(opts)
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *options) error {
		opts.logger = logger
		return nil
	}}
}

// WithDropLogRate limits how often dropped events are logged, per
// category (e.g. per undelivered custom event id). The map is in the form
// accepted by catrate, e.g. {time.Second: 1, time.Minute: 10}.
func WithDropLogRate(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *options) error {
		if len(rates) == 0 {
			return errors.New("native: drop log rate requires at least one rate")
		}
		opts.dropRate = rates
		return nil
	}}
}

func resolveOptions(opts []Option) (*options, error) {
	cfg := &options{
		dropRate: map[time.Duration]int{
			time.Second: 1,
			time.Minute: 10,
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
