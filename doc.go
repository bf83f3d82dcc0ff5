// Package identity manages the account lifecycle for a web service:
// signup, credential verification, session token issuance and revocation,
// email-based account verification, and avatar processing.
//
// Account lifecycle:
//   - Accounts are created unverified with a fresh verification token and a
//     gravatar-derived avatar URL. Login is rejected until the account has
//     been verified through the emailed confirmation link.
//   - A successful login issues a signed session token (1 hour) and persists
//     it on the account; logout clears it. At most one session token is
//     active per account, a later login overwrites the previous one.
//
// Notifications:
//   - Verification emails are dispatched best-effort through the Mailer
//     interface. Delivery failures are logged and never surfaced to the
//     caller, so account creation is not blocked by a mail provider outage.
//
// Storage:
//   - Accounts are persisted via Bun. Components depend on the narrow
//     AccountStore interface; the Accounts repository implements it on top
//     of go-repository-bun. Email and verification token uniqueness are
//     enforced by the storage schema.
package identity
