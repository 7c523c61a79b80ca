// Package source delivers live account updates for one on-chain program as a
// cancellable, ordered sequence. The transport publishes account data in a
// declared binary encoding; the source hands raw bytes to the consumer.
package source

// Update is one account-state-change notification. Data holds the account's
// raw bytes; the remaining fields are transport metadata the core does not
// interpret.
type Update struct {
	// ID correlates log lines for one update across the pipeline.
	ID string

	// Pubkey is the address of the account that changed.
	Pubkey string

	// Slot is the chain slot the update was observed at.
	Slot uint64

	// Data is the account's current raw state, discriminator included.
	Data []byte
}

// Source is an active subscription to a program's account updates.
type Source interface {
	// Updates returns the ordered sequence of updates. The channel is closed
	// when the subscription ends, whether by Unsubscribe or by the transport
	// closing on its own.
	Updates() <-chan Update

	// Unsubscribe tears the subscription down. Safe to call more than once
	// and after the transport has already closed.
	Unsubscribe() error

	// Err reports the terminal transport error, if the sequence ended
	// because of one. Valid after Updates() is closed.
	Err() error
}
