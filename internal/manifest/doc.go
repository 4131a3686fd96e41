// Package manifest reads the SoundbanksInfo.xml file Wwise writes next to its
// generated banks.
//
// The manifest is the only source of human-readable names: banks list the
// .bnk files to split, and File entries map numeric media ids to the
// designer-facing paths the output tree uses. Parsing walks the XML token
// stream instead of binding to a schema so unrelated sections and newer Wwise
// versions do not break extraction.
package manifest
