package provider

import "encoding/base64"

// EncodeBase64 encodes image bytes for vendors that take a bare base64
// source block.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// EncodeDataURL packs raw image bytes into a data URL for vendors that
// take inline images.
func EncodeDataURL(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + EncodeBase64(data)
}
