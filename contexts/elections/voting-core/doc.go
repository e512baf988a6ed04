// Package votingcore implements the ballot box inside the elections context.
//
// The module owns identity registration with token verification, rate-limited
// login, one-vote-per-identity ballot casting with confidential vote records,
// the candidate tally, and an append-only audit trail. Business rules live in
// the application and domain layers; storage, credential hashing, vote
// encoding and the interactive console sit behind ports and adapters.
package votingcore
