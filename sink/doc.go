// SPDX-License-Identifier: EPL-2.0

// Package sink provides stream.Sink implementations that do not need a
// network: an in-memory Recorder, a Discard sink and a Multi fan-out.
//
// Network and file sinks live in the natssink, wssink and wavsink
// subpackages.
package sink
