package exchange

import (
	"fmt"
	"sort"
	"time"
)

const (
	Binance = "binance"
	Bybit   = "bybit"
)

type Options struct {
	BinanceURL string
	BybitURL   string
	// Timeout bounds a single HTTP round trip of a client.
	Timeout time.Duration
}

type Constructor func() Client

// Registry maps exchange ids to client constructors. Registration happens at
// startup; afterwards the registry is read-only and safe for concurrent use.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry(opts Options) *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register(Binance, func() Client { return NewBinanceClient(opts.BinanceURL, opts.Timeout) })
	r.Register(Bybit, func() Client { return NewBybitClient(opts.BybitURL, opts.Timeout) })
	return r
}

func (r *Registry) Register(id string, constructor Constructor) {
	r.constructors[id] = constructor
}

func (r *Registry) Exchanges() []string {
	ids := make([]string, 0, len(r.constructors))
	for id := range r.constructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Supports(id string) bool {
	_, ok := r.constructors[id]
	return ok
}

func (r *Registry) NewClient(id string) (Client, error) {
	constructor, ok := r.constructors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExchange, id)
	}
	return constructor(), nil
}
