// Package broadcast implements the broadcast group: a named collection of
// platform clients that one logical notification is fanned out to.
//
// # Concepts
//
// A Group holds registered clients, each under a unique alias. Callers
// register clients with Add and then invoke a broadcast operation
// (Broadcast, BroadcastEmbed, the severity shortcuts, or TestConnections).
// Every operation dispatches to all registered clients concurrently and
// returns one aggregated report keyed by alias.
//
// # Capabilities
//
// Client is the only required contract. Optional capabilities (EmbedSender,
// ConnectionTester) are resolved once at registration time and cached; a
// client that lacks a capability gets a graceful fallback at dispatch time
// (plain-text rendering for embeds, a probe send for connection tests).
//
// # Delivery semantics
//
// Dispatch is fire-and-forget and settle-all: the group waits for every
// client's outcome, success or failure, and never short-circuits. One
// client's failure is recorded in its own result slot and cannot abort,
// delay, or affect any other client's outcome. Aggregate calls never return
// an error; a total failure of every client still yields a full report.
// There is no retry, queuing, or rate limiting at the group level.
package broadcast
