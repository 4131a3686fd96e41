// Package ledger persists the hash ledger (ExtractedAudio.json) that lets a
// run skip media whose content is unchanged since the previous run.
//
// The file is a JSON array of {FileId, FilePath, FileHash} objects. It is
// read once at the start of a run and replaced atomically at the end of a
// successful one; a run that fails leaves the previous ledger untouched.
package ledger
