package store

import (
	"context"
	"fmt"
)

// cachedTx is the slice of a transaction's decoded outputs kept in the
// prevout LRU - just enough to answer ResolveOutput without re-decoding the
// full tx payload on every cache hit.
type cachedTx struct {
	values []float64
	addrs  [][]string
}

// ResolveOutput implements core.PrevoutResolver: it looks up the value and
// addresses of vout index voutIndex of prevTxid. A prevTxid's vout set is
// decoded once and then served from the LRU, however many vins reference it,
// until it is evicted or InsertTx rewrites that txid (§4.3).
func (s *Store) ResolveOutput(prevTxid string, voutIndex int) (float64, []string, error) {
	ctx := context.Background()

	tx, ok := s.prevoutCache.Get(prevTxid)
	if !ok {
		decoded, found, err := s.GetTxFromHash(ctx, prevTxid)
		if err != nil {
			return 0, nil, fmt.Errorf("resolve prevout %s: %w", prevTxid, err)
		}
		if !found {
			return 0, nil, fmt.Errorf("prevout not found: %s", prevTxid)
		}
		tx = cachedTx{
			values: make([]float64, len(decoded.Vout)),
			addrs:  make([][]string, len(decoded.Vout)),
		}
		for _, v := range decoded.Vout {
			if v.N < 0 || v.N >= len(tx.values) {
				continue
			}
			tx.values[v.N] = v.Value
			tx.addrs[v.N] = v.ScriptPubKey.Addresses
		}
		s.prevoutCache.Add(prevTxid, tx)
	}

	if voutIndex < 0 || voutIndex >= len(tx.values) {
		return 0, nil, fmt.Errorf("vout %d not found on tx %s", voutIndex, prevTxid)
	}
	return tx.values[voutIndex], tx.addrs[voutIndex], nil
}
