// Package ingestion turns the raw Solana transaction stream into topic
// publications. The subscriber filters by program address and instruction
// discriminator and publishes one envelope per recognized instruction.
package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"nft-auction-feed/internal/broker"
	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/observability"
	"nft-auction-feed/internal/solana"
)

// discriminatorTopics maps the 8-byte Anchor instruction discriminator to the
// topic its envelope is published on.
var discriminatorTopics = map[[8]byte]string{
	{225, 117, 68, 160, 27, 168, 128, 51}: domain.TopicInitLibrary,
	{211, 57, 6, 167, 15, 219, 35, 251}:   domain.TopicMintNFT,
	{209, 98, 122, 16, 194, 244, 76, 183}: domain.TopicBidPlaced,
	{190, 28, 194, 8, 194, 218, 78, 78}:   domain.TopicTransferNFT,
}

// Subscriber consumes the transaction stream and routes envelopes onto the
// broker.
type Subscriber struct {
	client         solana.StreamClient
	broker         broker.Broker
	programAddress string
	logger         *log.Logger
	metrics        *observability.Metrics
}

// NewSubscriber creates a stream subscriber for one auction program.
func NewSubscriber(client solana.StreamClient, b broker.Broker, programAddress string, logger *log.Logger, metrics *observability.Metrics) *Subscriber {
	return &Subscriber{
		client:         client,
		broker:         b,
		programAddress: programAddress,
		logger:         logger,
		metrics:        metrics,
	}
}

// Run subscribes to the stream and processes notifications until ctx is
// cancelled or the stream closes. A closed stream returns an error so the
// supervisor restarts the subscription.
func (s *Subscriber) Run(ctx context.Context) error {
	ch, err := s.client.SubscribeTransactions(ctx, solana.TxFilter{
		AccountInclude: []string{s.programAddress},
		Vote:           false,
		Failed:         false,
	})
	if err != nil {
		return fmt.Errorf("subscribe transactions: %w", err)
	}

	s.logger.Printf("[ingestion] subscribed program=%s", s.programAddress)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notif, ok := <-ch:
			if !ok {
				return fmt.Errorf("transaction stream closed")
			}
			s.handleTransaction(notif)
		}
	}
}

// handleTransaction publishes the envelope of the first instruction whose
// discriminator is recognized. One transaction carries at most one auction
// instruction, so matching stops at the first hit.
func (s *Subscriber) handleTransaction(notif solana.TxNotification) {
	for _, ins := range notif.Instructions {
		if len(ins.Data) < 8 {
			continue
		}

		var disc [8]byte
		copy(disc[:], ins.Data[:8])

		topic, ok := discriminatorTopics[disc]
		if !ok {
			continue
		}

		event := buildEnvelope(notif)

		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Printf("[ingestion] marshal envelope sig=%s: %v", notif.Signature, err)
			return
		}

		s.broker.Publish(topic, payload)
		s.metrics.EnvelopesPublished.WithLabelValues(topic).Inc()
		return
	}
}

// buildEnvelope converts a stream notification into the canonical envelope
// carried on the broker.
func buildEnvelope(notif solana.TxNotification) domain.TransactionEvent {
	instructions := make([]domain.CompiledInstruction, 0, len(notif.Instructions))
	for _, ins := range notif.Instructions {
		instructions = append(instructions, domain.CompiledInstruction{
			ProgramIDIndex: ins.ProgramIDIndex,
			Accounts:       ins.Accounts,
			Data:           ins.Data,
		})
	}

	// Timestamp is left empty: the stream reports no event creation time,
	// and the receive time is not a substitute for it.
	return domain.TransactionEvent{
		Signature: notif.Signature,
		Slot:      notif.Slot,
		TransactionMessage: domain.TransactionMessage{
			AccountKeys:     notif.AccountKeys,
			RecentBlockhash: notif.RecentBlockhash,
			Instructions:    instructions,
		},
		TransactionSignatures: notif.Signatures,
		Logs:                  notif.Logs,
	}
}
