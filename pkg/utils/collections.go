package utils

// Generates a sequence constructed by applying a function to all elements of a given input sequence
func Map[T any, U any](input []T, mapFunction func(T) U) []U {
	output := make([]U, len(input))

	for i := range input {
		output[i] = mapFunction(input[i])
	}

	return output
}

// Returns the items of a sequence for which the predicate holds, in order
func Filter[T any](input []T, predicate func(T) bool) []T {
	var output []T

	for _, item := range input {
		if predicate(item) {
			output = append(output, item)
		}
	}

	return output
}

// Generates a map from a sequence of items and a function that generates a key from an item.
// Later items win over earlier ones with the same key.
func GenMap[T any, Key comparable](input []T, keyFunc func(T) Key) map[Key]T {
	output := make(map[Key]T, len(input))

	for _, value := range input {
		output[keyFunc(value)] = value
	}

	return output
}
