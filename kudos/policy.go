package kudos

// NeverNotify is the threshold value that mutes a notification direction
// entirely.
const NeverNotify = -1

// ShouldNotify reports whether a notification threshold permits notifying for
// the given amount. A nil threshold always notifies, NeverNotify never does,
// and any other value N notifies only when amount >= N.
func ShouldNotify(threshold *int, amount int) bool {
	switch {
	case threshold == nil:
		return true
	case *threshold == NeverNotify:
		return false
	case *threshold > amount:
		return false
	}
	return true
}
