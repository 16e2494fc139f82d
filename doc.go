// Package hybridcache implements a two-tier cache: a fast process-local tier in front of a
// shared distributed tier, exposed as one read/write/invalidate API.
//
// Components:
//   - Tier[V]: one cache tier (get, get-or-load, set, remove, remove-by-prefix).
//     NewTier adapts any byte Provider (Redis, Memcache, Ristretto, BigCache) plus a
//     Codec[V]; tier/memory is a typed in-process tier that stores V directly.
//   - Resolver[V] / Tiers[V]: hand the local and distributed tiers to New.
//   - HybridCache[V]: the orchestrator.
//
// Read path:
//
//	local hit        -> return
//	distributed hit  -> backfill local (best effort) -> return
//	both miss        -> retriever (once) -> write local, then distributed -> return
//
// Writes go to both tiers (local first). Removes go distributed first, then local, so a
// concurrent read cannot backfill a value that is about to disappear from the shared tier.
//
// The two tiers are eventually consistent. With a Bus configured, Set/Refresh/Remove and
// RemoveByPrefix are broadcast so other processes drop their local copies.
package hybridcache
