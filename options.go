package viewdispatcher

import (
	"errors"

	"github.com/joeycumines/go-viewdispatcher/native"
	"github.com/joeycumines/go-viewdispatcher/record"
	"github.com/joeycumines/logiface"
)

// dispatcherOptions holds configuration for New.
type dispatcherOptions struct {
	logger  *logiface.Logger[logiface.Event]
	records *record.Registry
	alloc   func() (native.Loop, error)
}

// Option configures a Dispatcher.
type Option interface {
	applyDispatcher(*dispatcherOptions) error
}

type dispatcherOptionImpl struct {
	applyDispatcherFunc func(*dispatcherOptions) error
}

func (o *dispatcherOptionImpl) applyDispatcher(opts *dispatcherOptions) error {
	return o.applyDispatcherFunc(opts)
}

// WithLogger sets the structured logger, which is also passed to the
// default native loop. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &dispatcherOptionImpl{func(opts *dispatcherOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithRecords sets the registry the GUI record is opened from. Defaults to
// [record.Default].
func WithRecords(records *record.Registry) Option {
	return &dispatcherOptionImpl{func(opts *dispatcherOptions) error {
		if records == nil {
			return errors.New("viewdispatcher: nil record registry")
		}
		opts.records = records
		return nil
	}}
}

// WithAllocator replaces the native loop allocator, which defaults to
// [native.Alloc]. The dispatcher takes ownership of each loop returned.
func WithAllocator(alloc func() (native.Loop, error)) Option {
	return &dispatcherOptionImpl{func(opts *dispatcherOptions) error {
		if alloc == nil {
			return errors.New("viewdispatcher: nil allocator")
		}
		opts.alloc = alloc
		return nil
	}}
}

func resolveDispatcherOptions(opts []Option) (*dispatcherOptions, error) {
	cfg := &dispatcherOptions{
		records: record.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyDispatcher(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.alloc == nil {
		logger := cfg.logger
		cfg.alloc = func() (native.Loop, error) {
			loop, err := native.Alloc(native.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			return loop, nil
		}
	}
	return cfg, nil
}
