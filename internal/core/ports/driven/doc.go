// Package driven defines the outbound ports of the advisor core: embedding
// generation, answer generation, the persisted cache tier, corpus loading,
// and session transcript storage. Adapters under internal/adapters/driven
// implement these interfaces.
package driven
