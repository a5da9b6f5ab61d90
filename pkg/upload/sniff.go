// Package upload validates media attached to drafts: product images for
// vision analysis and voice notes for transcription. Validation sniffs
// the actual content rather than trusting the declared Content-Type.
package upload

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/listora/listora/pkg/api"
)

// Size limits in bytes. Images feed the vision model inline as base64;
// audio goes to the transcription endpoint, which caps files at 25MB.
const (
	MaxImageBytes = 10 << 20
	MaxAudioBytes = 25 << 20
)

// imageTypes are the MIME types accepted for product images.
var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// audioTypes are the MIME types accepted for voice notes.
var audioTypes = map[string]bool{
	"audio/mpeg": true,
	"audio/wav":  true,
	"audio/ogg":  true,
	"audio/mp4":  true,
}

// audioExtensions maps file extensions to MIME types for audio formats
// http.DetectContentType cannot identify from content alone.
var audioExtensions = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
	".ogg": "audio/ogg",
	".m4a": "audio/mp4",
	".mp4": "audio/mp4",
}

// CheckImage validates product image content and returns the detected
// MIME type. The declared Content-Type is ignored; detection uses the
// leading bytes.
func CheckImage(data []byte) (string, *api.APIError) {
	if len(data) == 0 {
		return "", api.NewInvalidRequestError("image", "image is empty")
	}
	if len(data) > MaxImageBytes {
		return "", api.NewInvalidRequestError("image",
			fmt.Sprintf("image exceeds the %dMB limit", MaxImageBytes>>20))
	}

	mimeType := http.DetectContentType(data)
	if !imageTypes[mimeType] {
		return "", api.NewInvalidRequestError("image",
			fmt.Sprintf("unsupported image type %q, expected JPEG, PNG, or WebP", mimeType))
	}

	return mimeType, nil
}

// CheckAudio validates voice note content and returns the detected MIME
// type. Content sniffing handles WAV and OGG; MP3 and M4A frames are not
// reliably detectable, so the filename extension decides for those.
func CheckAudio(data []byte, filename string) (string, *api.APIError) {
	if len(data) == 0 {
		return "", api.NewInvalidRequestError("audio", "audio is empty")
	}
	if len(data) > MaxAudioBytes {
		return "", api.NewInvalidRequestError("audio",
			fmt.Sprintf("audio exceeds the %dMB limit", MaxAudioBytes>>20))
	}

	mimeType := http.DetectContentType(data)
	if audioTypes[canonicalAudioType(mimeType)] {
		return canonicalAudioType(mimeType), nil
	}

	ext := strings.ToLower(path.Ext(filename))
	if byExt, ok := audioExtensions[ext]; ok {
		return byExt, nil
	}

	return "", api.NewInvalidRequestError("audio",
		"unsupported audio format, expected MP3, WAV, OGG, or M4A")
}

// canonicalAudioType folds the sniffer's variant names onto the accepted
// MIME types.
func canonicalAudioType(mimeType string) string {
	switch mimeType {
	case "audio/wave", "audio/x-wav", "audio/vnd.wave":
		return "audio/wav"
	case "application/ogg":
		return "audio/ogg"
	}
	return mimeType
}
