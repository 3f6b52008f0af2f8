// Package core holds the connector contracts shared by every other package:
// configuration, error envelopes, the tagged Value, field descriptors, the
// remote domain types, and the orchestration layer callbacks.
package core
