package telemetry

import "github.com/pthm-cable/shoal/genetics"

// CountSpeciesClusters counts connected components of the pairwise
// same-species relation. Species membership is not transitive, so this is
// an estimate: a chain of close genes collapses into one cluster even when
// its ends would not interbreed.
func CountSpeciesClusters(genes []genetics.Gene, limit float64) int {
	n := len(genes)
	if n == 0 {
		return 0
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	clusters := n
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !genes[i].IsSameSpecies(genes[j], limit) {
				continue
			}
			ri, rj := find(i), find(j)
			if ri != rj {
				parent[rj] = ri
				clusters--
			}
		}
	}
	return clusters
}
