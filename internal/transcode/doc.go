// Package transcode converts every .wem in the output tree to Ogg Vorbis and
// repacks the result, removing the .wem afterwards.
package transcode
