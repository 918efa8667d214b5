/*
Package log provides structured logging for the relayer using zerolog.

A single global Logger is configured once via Init, then specialized with
child loggers carrying component/chain/packet context:

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})

	chainLog := log.WithChainID("osmosis-1")
	chainLog.Info().Msg("event source connected")

	pktLog := log.WithPacket("transfer", "channel-0", 42)
	pktLog.Warn().Err(err).Msg("recv_packet submission failed, retrying")

# Helpers

  - WithComponent(name): generic component tag (e.g. "eventsource", "batcher")
  - WithChainID(id): tags logs with the chain a component is acting on
  - WithClientID(id): tags logs with the IBC client a component is updating
  - WithPacket(srcPort, srcChannel, sequence): tags a relay task's full lifecycle

Never log packet data payloads or proof bytes; log their lengths instead.
*/
package log
