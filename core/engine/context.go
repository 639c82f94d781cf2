package engine

// referringForms are the anaphoric expressions resolved against the session
// focus instead of the catalog.
var referringForms = map[string]struct{}{
	"it": {}, "that": {}, "this": {},
	"this one": {}, "that one": {}, "the same": {}, "same one": {},
	"he": {}, "she": {}, "they": {},
	"him": {}, "her": {}, "them": {},
	"his": {}, "hers": {}, "their": {}, "its": {},
}

// IsReferring reports whether a cleaned mention is an anaphoric reference to
// the focus entity rather than an entity name.
func IsReferring(mention string) bool {
	_, ok := referringForms[mention]
	return ok
}
