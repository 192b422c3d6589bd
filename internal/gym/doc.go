// Package gym defines the Gym record and the rules every stored record obeys.
//
// A Gym is created from a Draft (raw form input). Drafts are normalised
// (trimmed, NFC) before validation, so a record that reaches storage always has
// a non-blank name and absent optional fields are nil rather than "".
//
// CreatedAt is persisted as an ISO-8601 UTC string with millisecond
// precision; see FormatTimestamp and ParseTimestamp.
package gym
