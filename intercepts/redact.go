package intercepts

import (
	"bytes"
	"encoding/json"
	"strings"
)

const redactedImage = "[BASE64_IMAGE_REMOVED]"

var dataImage = []byte("data:image")

// marshalRedacted marshals v with inline base64 images replaced
func marshalRedacted(v any) (json.RawMessage, error) {
	bs, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if !bytes.Contains(bs, dataImage) {
		return bs, nil
	}
	var tree any
	if err := json.Unmarshal(bs, &tree); err != nil {
		return nil, err
	}
	return json.Marshal(redact(tree))
}

func redact(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for key, value := range v {
			if s, ok := value.(string); ok && key == "url" && strings.HasPrefix(s, string(dataImage)) {
				v[key] = redactedImage
				continue
			}
			v[key] = redact(value)
		}
	case []any:
		for i, elem := range v {
			v[i] = redact(elem)
		}
	}
	return v
}
