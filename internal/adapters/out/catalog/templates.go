package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"fulfillment/internal/core/domain/model/label"
)

//go:embed templates/*.zpl
var builtin embed.FS

const templateExt = ".zpl"

// LoadTemplates returns a catalog holding the built-in templates, then every
// *.zpl file of dir (when set). File names are <family>.zpl for a template
// used at any weight, or <family>.<bracket>.zpl, e.g. pitney_v2.heavy.zpl.
func LoadTemplates(dir string, families []label.Family) (*label.Catalog, error) {
	catalog := label.NewCatalog()
	for _, f := range families {
		catalog.AddFamily(f)
	}

	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		return nil, err
	}
	if err := addAll(catalog, sub); err != nil {
		return nil, fmt.Errorf("built-in templates: %w", err)
	}

	if dir != "" {
		if err := addAll(catalog, os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("templates dir %s: %w", dir, err)
		}
	}
	return catalog, nil
}

func addAll(catalog *label.Catalog, fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*"+templateExt)
	if err != nil {
		return err
	}
	for _, name := range names {
		key, err := parseName(name)
		if err != nil {
			return err
		}
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		tpl, err := label.NewTemplate(key, string(src))
		if err != nil {
			return err
		}
		catalog.Add(tpl)
	}
	return nil
}

func parseName(name string) (label.Key, error) {
	base := strings.TrimSuffix(path.Base(name), templateExt)
	family, bracket, found := strings.Cut(base, ".")
	key := label.Key{Family: family, Bracket: label.AnyWeight}
	if found {
		key.Bracket = label.WeightBracket(bracket)
	}
	if err := key.Bracket.Validate(); err != nil {
		return label.Key{}, fmt.Errorf("%s: %w", name, err)
	}
	return key, nil
}
