// Package ww2ogg converts Wwise .wem audio to Ogg Vorbis through the ww2ogg
// tool and its packed codebook file.
package ww2ogg
