// Package dedup moves extracted .wem media into the output tree under their
// manifest names, skipping media whose content is unchanged since the last
// run.
//
// Processing is sequential and follows manifest order. The first entry for a
// canonical path wins; later entries that map to the same path only have their
// source file removed. Media left in the source tree afterwards is not named by
// the manifest and is relocated flat into the unknown-audio folder.
package dedup
