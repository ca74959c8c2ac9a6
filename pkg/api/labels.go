package api

import "strconv"

func vertexLabels(n int, oneBased bool) []string {
	base := 0
	if oneBased {
		base = 1
	}
	labels := make([]string, n)
	for v := range labels {
		labels[v] = strconv.Itoa(v + base)
	}
	return labels
}
