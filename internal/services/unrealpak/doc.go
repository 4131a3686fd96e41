// Package unrealpak drives the UnrealPak command-line tool to unpack the
// audio payload (banks, streamed media and the manifest) from game archives.
package unrealpak
