package dedupe

import "github.com/agenthands/dupscan/internal/core/model"

// unionFind is a disjoint-set forest over record keys with path compression
// and union by rank.
type unionFind struct {
	parent map[model.RecordKey]model.RecordKey
	rank   map[model.RecordKey]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[model.RecordKey]model.RecordKey),
		rank:   make(map[model.RecordKey]int),
	}
}

func (u *unionFind) add(k model.RecordKey) {
	if _, ok := u.parent[k]; !ok {
		u.parent[k] = k
	}
}

func (u *unionFind) find(k model.RecordKey) model.RecordKey {
	u.add(k)
	root := k
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for k != root {
		next := u.parent[k]
		u.parent[k] = root
		k = next
	}
	return root
}

func (u *unionFind) union(a, b model.RecordKey) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

// components groups every key seen by its root.
func (u *unionFind) components() map[model.RecordKey][]model.RecordKey {
	groups := make(map[model.RecordKey][]model.RecordKey)
	for k := range u.parent {
		root := u.find(k)
		groups[root] = append(groups[root], k)
	}
	return groups
}
