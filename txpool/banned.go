// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package txpool

import "github.com/engboniface/stellar-core/core"

// bannedDeque is a bounded FIFO of banDepth hash buckets. Index 0 is
// "just banned"; index k is "banned k shifts ago".
type bannedDeque struct {
	depth   int
	buckets []map[core.Hash]struct{}
}

func newBannedDeque(depth int) *bannedDeque {
	d := &bannedDeque{depth: depth}
	d.buckets = append(d.buckets, make(map[core.Hash]struct{}))
	return d
}

func (d *bannedDeque) ban(hash core.Hash) {
	d.buckets[0][hash] = struct{}{}
}

func (d *bannedDeque) contains(hash core.Hash) bool {
	for _, b := range d.buckets {
		if _, ok := b[hash]; ok {
			return true
		}
	}
	return false
}

func (d *bannedDeque) count(index int) int {
	if index < 0 || index >= len(d.buckets) {
		return 0
	}
	return len(d.buckets[index])
}

// shift pushes a fresh bucket at the front, dropping the oldest bucket
// once there are more than depth of them (those hashes become admissible
// again).
func (d *bannedDeque) shift() {
	fresh := make(map[core.Hash]struct{})
	d.buckets = append([]map[core.Hash]struct{}{fresh}, d.buckets...)
	if len(d.buckets) > d.depth {
		d.buckets = d.buckets[:d.depth]
	}
}
