package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultLanguage is the language Wwise assigns to non-localized media.
const DefaultLanguage = "SFX"

// ErrNoManifest indicates the manifest file does not exist.
var ErrNoManifest = errors.New("manifest not found")

var hashSuffix = regexp.MustCompile(`_[0-9A-F]+(\.[^./\\]+)$`)

// Bank is a sound bank listed by the manifest.
type Bank struct {
	ID       string
	Language string
	// Path is relative to the directory holding the manifest.
	Path string
}

// Entry is a media file listed by the manifest.
type Entry struct {
	ID       string
	Language string
	// Path is the declared path, including any hash suffix.
	Path string
}

// CanonicalPath returns the entry's path with its hash suffix removed.
func (e Entry) CanonicalPath() string {
	return CanonicalPath(e.Path)
}

// LanguageDir returns the sub-directory bnkextr output for this entry lands
// in: "" for SFX media, otherwise the language name.
func (e Entry) LanguageDir() string {
	return LanguageDir(e.Language)
}

// SourceName returns the file name bnkextr gives the entry's media.
func (e Entry) SourceName() string {
	return e.ID + ".wem"
}

// Manifest holds the banks and files declared by one SoundbanksInfo.xml.
type Manifest struct {
	banks []Bank
	files []Entry
}

// Banks yields every SoundBank with a Path, in document order.
func (m *Manifest) Banks() iter.Seq[Bank] {
	return slices.Values(m.banks)
}

// Files yields every File with a Path, in document order.
func (m *Manifest) Files() iter.Seq[Entry] {
	return slices.Values(m.files)
}

// Counts returns the number of banks and files.
func (m *Manifest) Counts() (banks, files int) {
	return len(m.banks), len(m.files)
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoManifest, path)
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	m, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// frame tracks an open SoundBank or File element while walking tokens.
type frame struct {
	kind     string
	id       string
	language string
	path     string
	hasPath  bool
}

// Parse reads a manifest document from r.
func Parse(r io.Reader) (*Manifest, error) {
	decoder := xml.NewDecoder(r)
	m := &Manifest{}

	// names mirrors the open element stack; frames holds the SoundBank/File
	// elements within it.
	var names []string
	var frames []*frame
	var text strings.Builder
	capturing := false

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch name {
			case "SoundBank", "File":
				frames = append(frames, &frame{
					kind:     name,
					id:       attr(t, "Id"),
					language: attr(t, "Language"),
				})
			case "Path":
				if len(frames) > 0 && len(names) > 0 && names[len(names)-1] == frames[len(frames)-1].kind {
					capturing = true
					text.Reset()
				}
			}
			names = append(names, name)

		case xml.CharData:
			if capturing {
				text.Write(t)
			}

		case xml.EndElement:
			if len(names) == 0 {
				break
			}
			name := names[len(names)-1]
			names = names[:len(names)-1]

			switch name {
			case "Path":
				if capturing {
					top := frames[len(frames)-1]
					top.path = strings.TrimSpace(text.String())
					top.hasPath = true
					capturing = false
				}
			case "SoundBank", "File":
				top := frames[len(frames)-1]
				frames = frames[:len(frames)-1]
				m.add(top)
			}
		}
	}

	if len(names) != 0 {
		return nil, fmt.Errorf("parse manifest: unexpected end of document inside <%s>", names[len(names)-1])
	}
	return m, nil
}

func (m *Manifest) add(f *frame) {
	if !f.hasPath || f.path == "" {
		return
	}
	language := f.language
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	switch f.kind {
	case "SoundBank":
		m.banks = append(m.banks, Bank{ID: f.id, Language: language, Path: f.path})
	case "File":
		m.files = append(m.files, Entry{ID: f.id, Language: language, Path: f.path})
	}
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// CanonicalPath strips an underscore followed by uppercase hex digits from
// immediately before the final extension: "foo_1A2B.wem" becomes "foo.wem".
func CanonicalPath(p string) string {
	return hashSuffix.ReplaceAllString(p, "$1")
}

// LanguageDir maps a manifest language to its bnkextr output directory.
func LanguageDir(language string) string {
	language = strings.TrimSpace(language)
	fold := cases.Fold()
	if language == "" || fold.String(language) == fold.String(DefaultLanguage) {
		return ""
	}
	return language
}

// LocalPath converts a manifest path, which may use either separator, into a
// path for the host filesystem.
func LocalPath(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
}
