package docstore

import "strings"

// JoinPath assembles a document or collection path from segments.
func JoinPath(segs ...string) string { return strings.Join(segs, "/") }

// LastSegment returns the final path segment (the document id for a
// document path, the collection name for a collection path).
func LastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// CollectionOf returns the collection path a document belongs to.
func CollectionOf(docPath string) string {
	if i := strings.LastIndexByte(docPath, '/'); i >= 0 {
		return docPath[:i]
	}
	return ""
}

// ParentDocument returns the path of the document that owns the collection
// containing docPath, or "" for documents in a top-level collection.
// "users/a@x/userProfiles/p1" -> "users/a@x".
func ParentDocument(docPath string) string {
	segs := strings.Split(docPath, "/")
	if len(segs) < 4 {
		return ""
	}
	return strings.Join(segs[:len(segs)-2], "/")
}

// Child returns the path of a named sub-collection under a document.
func Child(docPath, collection string) string {
	return docPath + "/" + collection
}
