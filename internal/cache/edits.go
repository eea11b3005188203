package cache

import "slices"

// Edit transforms a cached T. Keys that hold nothing are left alone.
func Edit[T any](key Key, fn func(T) T) Write {
	return Write{Key: key, Apply: func(current any, ok bool) (any, bool) {
		if !ok {
			return nil, false
		}
		typed, ok := current.(T)
		if !ok {
			return nil, false
		}
		return fn(typed), true
	}}
}

// Put stores value whether or not the key holds anything
func Put[T any](key Key, value T) Write {
	return Write{Key: key, Apply: func(any, bool) (any, bool) {
		return value, true
	}}
}

// Append adds items to the end of a cached list
func Append[E any](key Key, items ...E) Write {
	return Edit(key, func(list []E) []E {
		out := make([]E, 0, len(list)+len(items))
		return append(append(out, list...), items...)
	})
}

// RemoveWhere drops every list element matching match
func RemoveWhere[E any](key Key, match func(E) bool) Write {
	return Edit(key, func(list []E) []E {
		return slices.DeleteFunc(slices.Clone(list), match)
	})
}

// UpdateWhere rewrites every list element matching match
func UpdateWhere[E any](key Key, match func(E) bool, fn func(E) E) Write {
	return Edit(key, func(list []E) []E {
		out := slices.Clone(list)
		for i := range out {
			if match(out[i]) {
				out[i] = fn(out[i])
			}
		}
		return out
	})
}

// ReplaceWhere swaps the elements matching match for item, appending item
// when nothing matched. Used to trade a temporary entry for the real one.
func ReplaceWhere[E any](key Key, match func(E) bool, item E) Write {
	return Edit(key, func(list []E) []E {
		out := slices.DeleteFunc(slices.Clone(list), match)
		return append(out, item)
	})
}
