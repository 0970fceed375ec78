package module

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// manifestName is the optional per-module settings file.
const manifestName = "module.hcl"

type hclManifest struct {
	Description string       `hcl:"description,optional"`
	Settings    *hclSettings `hcl:"settings,block"`
}

// hclSettings keeps the attribute set open: every module decides its own
// setting names.
type hclSettings struct {
	Body hcl.Body `hcl:",remain"`
}

// loadManifest reads the module.hcl next to the route subdirectories. A
// missing manifest yields empty settings. A present but broken one fails
// the module load: running with silently dropped settings is worse than
// not running.
func loadManifest(dir string, parser *hclparse.Parser) (string, map[string]cty.Value, error) {
	path := filepath.Join(dir, manifestName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("stat %s: %w", path, err)
	}

	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return "", nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}
	var parsed hclManifest
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return "", nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}
	if parsed.Settings == nil {
		return parsed.Description, nil, nil
	}

	attrs, diags := parsed.Settings.Body.JustAttributes()
	if diags.HasErrors() {
		return "", nil, fmt.Errorf("failed to read settings in %s: %w", path, diags)
	}
	settings := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		// Settings are literals; there is no evaluation context to offer.
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return "", nil, fmt.Errorf("setting %q in %s: %w", name, path, diags)
		}
		settings[name] = v
	}
	return parsed.Description, settings, nil
}
