package main

import (
	"fmt"
	"log/slog"

	"github.com/dwikikusuma/shoping-cart/pkg/config"
	"github.com/dwikikusuma/shoping-cart/pkg/kafka"
	"github.com/dwikikusuma/shoping-cart/pkg/outbox"
)

// newRelay builds the outbox relay and its publisher. The relay is nil when
// no brokers are configured. The returned close func is always safe to call.
func newRelay(cfg config.Config, store outbox.Store, log *slog.Logger) (*outbox.Relay, func(), error) {
	kc := kafka.NewClient(cfg.KafkaBrokers)
	if !kc.Enabled() {
		log.Warn("KAFKA_BROKERS empty, outbox events stay unpublished")
		return nil, func() {}, nil
	}

	pub, err := kc.NewPublisher(cfg.KafkaTopic)
	if err != nil {
		return nil, func() {}, fmt.Errorf("kafka publisher: %w", err)
	}
	closeFn := func() {
		if err := pub.Close(); err != nil {
			log.Error("kafka publisher close error", slog.Any("err", err))
		}
	}
	return outbox.NewRelay(store, pub, log, cfg.OutboxPollInterval, cfg.OutboxBatchSize), closeFn, nil
}
