// SPDX-License-Identifier: MIT

/*
Package linectl is a library for controlling GPIO lines on Linux platforms
through the GPIO character device.

A [Chip] represents one open character device and answers line info queries.
A [LineConfig] maps line offsets to [LineSettings] - direction, edge
detection, bias, drive, polarity, debounce and event clock. Submitting a
configuration with [Chip.RequestLines] reserves the lines under a single
kernel handle, returning a [Request].

The Request serves bulk value reads and writes, in-place reconfiguration,
and edge event delivery. Edge events are read in batches into a reusable
[EdgeEventBuffer] and carry per-request and per-line sequence numbers that
increase strictly monotonically for the lifetime of the request.

Lines not requested can still be observed - [Chip.WatchLineInfo] subscribes
to request/release/reconfigure transitions performed by any process, with
events read via [Chip.ReadInfoEvent].

Waiting for events is a plain blocking call with a timeout - there are no
callbacks and no event loop. Callers wanting to multiplex can poll the
descriptors themselves.

# Example Usage

Request a button line with both edge detection and an LED line as an output,
then report edges:

	chip, err := linectl.NewChip("gpiochip0")
	cfg := linectl.NewLineConfig()
	cfg.AddLine(4, linectl.LineSettings{EdgeDetection: linectl.LineEdgeBoth})
	cfg.AddLine(5, linectl.LineSettings{
		Direction:   linectl.LineDirectionOutput,
		OutputValue: linectl.LineActive,
	})
	req, err := chip.RequestLines(cfg, linectl.WithConsumer("doorbell"))
	defer req.Close()

	buf := linectl.NewEdgeEventBuffer(16)
	for {
		ready, err := req.WaitEdgeEvent(time.Second)
		if err != nil || !ready {
			break
		}
		n, err := req.ReadEdgeEvents(buf, 0)
		for _, e := range buf.Events()[:n] {
			fmt.Println(e.Offset, e.Type, e.Seqno)
		}
	}

Requests remain valid after the chip that created them is closed - the
kernel reservation is a separate resource with its own handle.
*/
package linectl
