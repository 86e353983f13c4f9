package solana

import "context"

// StreamClient defines the Solana WebSocket transaction subscription interface.
type StreamClient interface {
	// SubscribeTransactions subscribes to transaction notifications matching
	// the filter.
	SubscribeTransactions(ctx context.Context, filter TxFilter) (<-chan TxNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// TxFilter defines the subscription filter for transactions.
type TxFilter struct {
	// AccountInclude keeps transactions whose account list mentions any of
	// these addresses.
	AccountInclude []string
	// Vote includes vote transactions when true.
	Vote bool
	// Failed includes failed transactions when true.
	Failed bool
}

// TxInstruction is one decoded instruction of a notification.
type TxInstruction struct {
	ProgramIDIndex uint32
	Accounts       []byte
	Data           []byte
}

// TxNotification represents one transaction subscription message.
type TxNotification struct {
	Signature       string
	Slot            int64
	Signatures      []string
	AccountKeys     []string
	RecentBlockhash string
	Instructions    []TxInstruction
	Logs            []string
}
