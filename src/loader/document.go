package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Extensions lists the document formats the loader reads, in the order
// they are tried when a reference names none.
var Extensions = []string{".yaml", ".yml", ".json", ".toml"}

func knownExt(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// document locates one fragment file. A nil fsys means the operating
// system filesystem and a native path; otherwise path is slash-separated
// inside fsys.
type document struct {
	fsys fs.FS
	// origin names fsys in cache keys and log lines, e.g. "preset[0]".
	origin string
	path   string
	// name is what the fragment is called in errors and labels.
	name string
}

func (d document) key() string {
	if d.fsys == nil {
		return "file:" + d.path
	}
	return d.origin + ":" + d.path
}

func (d document) read() ([]byte, error) {
	if d.fsys == nil {
		return os.ReadFile(d.path)
	}
	return fs.ReadFile(d.fsys, d.path)
}

// join resolves a relative reference against the directory of d.
func (d document) join(ref string) document {
	if d.fsys == nil {
		return document{path: filepath.Join(filepath.Dir(d.path), filepath.FromSlash(ref))}
	}
	return document{fsys: d.fsys, origin: d.origin, path: path.Join(path.Dir(d.path), ref)}
}

// locate applies extension inference: the path as given when it carries a
// known extension, otherwise each known extension in turn.
func (d document) locate() (document, []string, bool) {
	candidates := []string{d.path}
	if !knownExt(d.path) {
		candidates = candidates[:0]
		for _, ext := range Extensions {
			candidates = append(candidates, d.path+ext)
		}
	}

	for _, c := range candidates {
		var err error
		var info fs.FileInfo
		if d.fsys == nil {
			info, err = os.Stat(c)
		} else {
			info, err = fs.Stat(d.fsys, c)
		}
		if err == nil && !info.IsDir() {
			found := d
			found.path = c
			return found, candidates, true
		}
	}
	return d, candidates, false
}

// decodeDocument parses data into a generic map according to the file
// extension of name.
func decodeDocument(name string, data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		doc = convertNumbers(doc).(map[string]any)
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported document type %q", path.Ext(name))
	}

	// An empty YAML document decodes to a nil map.
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// convertNumbers replaces every json.Number in v with an int64, or a float64
// when the number has a fraction or exponent, so JSON documents carry the
// same numeric types as YAML and TOML ones.
func convertNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = convertNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = convertNumbers(item)
		}
		return val
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	}
	return v
}
