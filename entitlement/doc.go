// Package entitlement answers what a subscriber may do and where they stand.
//
// Subscription tiers map to permissions and per-feature allowances; XP maps to
// prophet ranks, levels and progress towards the next rank. Everything is a
// pure function over immutable tables built at init: no I/O, no state, safe for
// concurrent use. Callers fetch tier and XP from the user profile store.
package entitlement
