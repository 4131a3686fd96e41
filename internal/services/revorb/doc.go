// Package revorb runs the revorb repacker over Ogg files produced by ww2ogg so
// players can seek them.
package revorb
