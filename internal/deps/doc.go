// Package deps checks that the external tools wwisex drives are installed.
package deps
