package utils

// FindIndex returns the index of the first element matching, or -1
func FindIndex[T any](slice []T, match func(T) bool) int {
	for i, v := range slice {
		if match(v) {
			return i
		}
	}
	return -1
}

func Contains[T comparable](slice []T, item T) bool {
	return FindIndex(slice, func(v T) bool { return v == item }) >= 0
}
