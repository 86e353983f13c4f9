package persister

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/near/borsh-go"
)

// programDataPrefix marks the log line carrying the base64 event payload.
const programDataPrefix = "Program data: "

// ErrNoEventData reports an envelope whose logs carry no event payload.
// Transactions that touch the program without emitting an event are normal,
// so callers count these without logging.
var ErrNoEventData = errors.New("no event data in logs")

// errBadRecord marks payloads that decoded cleanly but produced a record the
// store cannot hold, such as a timestamp outside the representable range.
var errBadRecord = errors.New("bad record")

// extractEventData finds the first "Program data: " log line, decodes its
// base64 payload and strips the 8-byte discriminator.
func extractEventData(logs []string) ([]byte, error) {
	for _, line := range logs {
		rest, ok := strings.CutPrefix(line, programDataPrefix)
		if !ok {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("decode event data: %w", err)
		}
		if len(raw) < 8 {
			return nil, fmt.Errorf("event data too short: %d bytes", len(raw))
		}
		return raw[8:], nil
	}
	return nil, ErrNoEventData
}

// checkConsumed rejects payloads longer than the decoded layout. borsh-go
// silently ignores trailing bytes, but the on-chain codec treats an
// unconsumed tail as a layout error.
func checkConsumed(v any, data []byte) error {
	out, err := borsh.Serialize(v)
	if err != nil {
		return fmt.Errorf("reserialize payload: %w", err)
	}
	if len(out) != len(data) {
		return fmt.Errorf("payload has %d trailing bytes", len(data)-len(out))
	}
	return nil
}
