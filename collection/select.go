package collection

import "github.com/cockroachdb/errors"

// SelectKth rearranges items in place so that items[k] holds the element that
// would be there if items were sorted ascending by key. Elements before k are
// not greater than it and elements after k are not smaller. Ties are left in
// no particular order.
func SelectKth[T any](items []T, k int, key func(T) float64) (ret T, _ error) {
	if k < 0 || len(items) <= k {
		return ret, errors.Wrapf(ErrIndexOutOfRange, "select %d of %d", k, len(items))
	}

	from, to := 0, len(items)-1
	for from < to {
		pivot := key(items[(from+to)/2])

		i, j := from, to
		for i <= j {
			for key(items[i]) < pivot {
				i++
			}
			for pivot < key(items[j]) {
				j--
			}
			if i <= j {
				items[i], items[j] = items[j], items[i]
				i++
				j--
			}
		}

		// [from, j] <= pivot <= [i, to]; anything strictly between equals pivot.
		switch {
		case k <= j:
			to = j
		case i <= k:
			from = i
		default:
			return items[k], nil
		}
	}

	return items[k], nil
}
