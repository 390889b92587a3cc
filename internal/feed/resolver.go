package feed

import "strings"

// Variants returns the key spellings checked for a logical attribute, in
// lookup order: namespaced, bare, bare upper case, namespaced upper case.
func Variants(key string) [4]string {
	upper := strings.ToUpper(key)
	return [4]string{"g:" + key, key, upper, "g:" + upper}
}

// Resolve returns the first non-empty value found under any spelling of key.
func Resolve(key string, r Record) Value {
	for _, k := range Variants(key) {
		if v, ok := r[k]; ok && !v.IsEmpty() {
			return v
		}
	}
	return nil
}

// Get is Resolve reduced to a single string.
func Get(key string, r Record) string {
	return Resolve(key, r).String()
}
