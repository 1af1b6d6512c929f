// Package domain contains the core business entities of the advisor:
// programme records, cache entries, conversation turns, and the sentinel
// errors shared across services and adapters. It has no dependencies on
// other packages in this repository.
package domain
