// Package procrun launches external tools with captured output.
//
// Every external executable wwisex drives (UnrealPak, bnkextr, ww2ogg,
// revorb) goes through a Runner so tool clients can be tested with stub
// runners and so exit codes, captured streams and timings are reported
// uniformly. Arguments are always passed as an argv slice; nothing is
// interpreted by a shell.
package procrun
