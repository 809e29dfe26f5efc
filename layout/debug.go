package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将每页的落点输出为 JSON，图片字节不会写出。
func WriteDebugJSON(doc *Document, path string) error {
	if doc == nil {
		return nil
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
