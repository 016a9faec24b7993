// Package apcaledger turns the activity feed of a brokerage account into
// journal entries in Ledger's plain text format.
//
// The feed reports every partial fill of an order as its own record and
// bills regulatory fees as activities of their own, disconnected from the
// trades that caused them. The package reconciles that feed one calendar
// day at a time:
//   - Batcher pages through a Feed until it holds a complete day.
//   - MergePartialFills collapses the partial fills of an order into its
//     terminal fill.
//   - AssociateFees attaches FINRA TAF and SEC REG fees to their trade.
//   - Renderer prints each reconciled record as a journal block.
//
// Pipeline wires them together. Nothing is persisted between runs.
package apcaledger
