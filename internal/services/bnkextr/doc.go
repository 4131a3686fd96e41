// Package bnkextr runs the bnkextr utility that splits Wwise sound banks into
// individual .wem files.
package bnkextr
