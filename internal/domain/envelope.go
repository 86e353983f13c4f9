package domain

// CompiledInstruction is one instruction of a transaction message.
// Data carries the raw instruction payload; its first 8 bytes are the
// discriminator when the instruction belongs to the auction program.
type CompiledInstruction struct {
	ProgramIDIndex uint32 `json:"program_id_index"`
	Accounts       []byte `json:"accounts"`
	Data           []byte `json:"data"`
}

// TransactionMessage is the decoded transaction message with account keys
// already re-encoded to base58 text.
type TransactionMessage struct {
	AccountKeys     []string              `json:"account_keys"`
	RecentBlockhash string                `json:"recent_blockhash"`
	Instructions    []CompiledInstruction `json:"instructions"`
}

// TransactionEvent is the canonical envelope around one transaction
// notification. The subscriber builds it, the broker carries it as JSON and
// the persisters consume it. Timestamp is the source-reported event time and
// stays empty when the stream does not supply one.
type TransactionEvent struct {
	Signature             string             `json:"signature"`
	Slot                  int64              `json:"slot"`
	Timestamp             string             `json:"timestamp"`
	TransactionMessage    TransactionMessage `json:"transaction_message"`
	TransactionSignatures []string           `json:"transaction_signatures"`
	Logs                  []string           `json:"logs"`
}
