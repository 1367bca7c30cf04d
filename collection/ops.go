package collection

// Partition reorders buf so that every element failing predicate precedes
// every element satisfying it, and returns the index of the first element
// satisfying it.
func Partition[T any](buf []T, predicate func(T) bool) int {
	i, j := 0, len(buf)-1
	for i <= j {
		for i <= j && !predicate(buf[i]) {
			i++
		}
		for i <= j && predicate(buf[j]) {
			j--
		}
		if i < j {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
	return i
}
