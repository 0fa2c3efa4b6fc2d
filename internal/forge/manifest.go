// file: internal/forge/manifest.go
package forge

import (
	"encoding/json"
	"strings"

	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
)

// ManifestRequiredFields lists the keys every manifest must carry, in the
// order missing ones are reported.
var ManifestRequiredFields = []string{"name", "version", "description"}

// ValidateManifest reports whether content is a JSON object holding every
// required field. Unparsable content, or JSON that is not an object, is
// MalformedInput; missing fields are InvalidArgument.
func ValidateManifest(content string) (string, error) {
	var manifest map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &manifest); err != nil {
		return "", mcperrors.MalformedInput("Invalid JSON in manifest", err).
			WithField("manifest_content").
			WithDetail(err.Error())
	}
	if manifest == nil {
		return "", mcperrors.MalformedInput("Invalid JSON in manifest", nil).
			WithField("manifest_content").
			WithDetail("manifest must be a JSON object")
	}

	var missing []string
	for _, field := range ManifestRequiredFields {
		if _, ok := manifest[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		list := strings.Join(missing, ", ")
		return "", &mcperrors.Failure{
			Kind:    mcperrors.KindInvalidArgument,
			Message: "Manifest is invalid. Missing fields: " + list,
			Detail:  list,
			Field:   "manifest_content",
		}
	}
	return "Manifest is valid.", nil
}
