package models

type ErrorKind int

const (
	// KindDataFetch is the catch-all kind; every FetchError belongs to it.
	KindDataFetch ErrorKind = iota
	KindInvalidSymbol
	KindExchange
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidSymbol:
		return "invalid_symbol"
	case KindExchange:
		return "exchange_error"
	default:
		return "data_fetch_error"
	}
}

// FetchError is the error returned by the ticker and historical services.
type FetchError struct {
	Kind    ErrorKind
	Message string
}

func (e *FetchError) Error() string {
	return e.Message
}

// Is reports kind equality against the sentinels below. ErrDataFetch matches
// any FetchError.
func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	if !ok {
		return false
	}
	if t == ErrDataFetch {
		return true
	}
	return t.Kind == e.Kind
}

var (
	ErrDataFetch     = &FetchError{Kind: KindDataFetch, Message: "data fetch failed"}
	ErrInvalidSymbol = &FetchError{Kind: KindInvalidSymbol, Message: "invalid symbol"}
	ErrExchange      = &FetchError{Kind: KindExchange, Message: "exchange error"}
)

func NewInvalidSymbolError(message string) *FetchError {
	return &FetchError{Kind: KindInvalidSymbol, Message: message}
}

func NewExchangeError(message string) *FetchError {
	return &FetchError{Kind: KindExchange, Message: message}
}

func NewDataFetchError(message string) *FetchError {
	return &FetchError{Kind: KindDataFetch, Message: message}
}
