// Package board implements the NAV board: a persisted list of tracked
// wallets grouped by client, per-wallet comment logs, row builders for DeBank
// position and token payloads, and concurrent balance snapshots that can be
// published to NATS.
//
// All state changes go through Store actions (select, comment, delete,
// clear), each of which is written through a Persister before returning.
package board
