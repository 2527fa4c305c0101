// Package checkout creates provider checkout sessions for plan purchases and
// records the pending plan selection on the user's account.
//
// A request flows through four stages: identity validation and user lookup,
// plan resolution, exactly one provider session call, and a bounded
// persistence loop. Only the first three can fail the request. Once the
// session exists the caller always gets it back, even when the user record
// could not be updated; persistence failures are logged for reconciliation.
//
// Persistence writes through an ordered list of WriteTarget values. When a
// privileged client is configured it comes first, so each attempt tries the
// privileged client and then falls back to the standard one. Every
// successful write is read back through the standard reader.
package checkout
