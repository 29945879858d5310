package utils

// Difference returns the elements of a that are not present in b,
// preserving the order of a and dropping duplicates.
func Difference(a, b []string) []string {
	present := make(map[string]bool, len(b))
	for _, v := range b {
		present[v] = true
	}
	diff := []string{}
	for _, v := range a {
		if !present[v] {
			present[v] = true
			diff = append(diff, v)
		}
	}
	return diff
}
