// Package models defines the core domain models for the cooperative ledger.
//
// # Money
//
// Every monetary field is an int64 in the smallest currency unit. All split
// and distribution arithmetic is integer-only; rounding remainders are never
// dropped, they are absorbed into a designated side of each split (capital
// portion for contributions, company share for bonuses, largest share for
// dividends).
//
// # Buckets
//
// A member's balance is held in four buckets:
//   - Capital: locked contribution portion feeding the investment pool,
//     withdrawable only above the 50,000-unit floor
//   - Savings: contribution portion for member emergency access
//   - Dividend: pro-rata profit share earned by eligible members
//   - Bonus: referral commission earned from support-fee payments
//
// # Design Principles
//
//  1. Models are pure — no storage or transport imports
//  2. ID fields are UUID strings; relationships use ID strings, not pointers
//  3. Derived state (dividend eligibility) is never stored authoritatively
//     by callers — it is recomputed from the balance after every mutation
package models
