package shader

import (
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// MergeBindGroupLayouts combines per-stage bind group layout descriptors into a single set.
// Entries that share a group and binding have their Visibility flags ORed together and keep
// the larger MinBindingSize; entries unique to one stage are kept as-is. Entries within each
// group are sorted by binding.
//
// Parameters:
//   - stages: descriptors from each shader stage, keyed by group index
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func MergeBindGroupLayouts(stages ...map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	byGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	labels := make(map[int]string)

	for _, stage := range stages {
		for g, desc := range stage {
			if byGroup[g] == nil {
				byGroup[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			if labels[g] == "" {
				labels[g] = desc.Label
			}
			for _, e := range desc.Entries {
				existing, ok := byGroup[g][e.Binding]
				if !ok {
					byGroup[g][e.Binding] = e
					continue
				}
				existing.Visibility |= e.Visibility
				existing.Buffer.MinBindingSize = max(existing.Buffer.MinBindingSize, e.Buffer.MinBindingSize)
				byGroup[g][e.Binding] = existing
			}
		}
	}

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(byGroup))
	for g, entryMap := range byGroup {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
		for _, e := range entryMap {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   labels[g],
			Entries: entries,
		}
	}
	return merged
}
