package security

import (
	"encoding/base64"
	"errors"
	"strings"
)

// 顔画像として受け付けるデータURLのMIMEタイプ
var allowedFaceImageTypes = []string{"image/png", "image/jpeg", "image/webp"}

var (
	// ErrInvalidFaceImage は顔画像がデータURL形式でない場合に返る。
	ErrInvalidFaceImage = errors.New("face image must be a base64 data URL")
	// ErrUnsupportedFaceImageType は許可されていない画像形式の場合に返る。
	ErrUnsupportedFaceImageType = errors.New("unsupported face image type")
)

// ValidateFaceImage はブラウザのカメラから送られる顔画像を検証する。
// "data:image/<type>;base64,<payload>" 形式で、payloadがBase64として復号できることを確認する。
func ValidateFaceImage(dataURL string) error {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return ErrInvalidFaceImage
	}

	mime := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	supported := false
	for _, t := range allowedFaceImageTypes {
		if mime == t {
			supported = true
			break
		}
	}
	if !supported {
		return ErrUnsupportedFaceImageType
	}

	if payload == "" {
		return ErrInvalidFaceImage
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return ErrInvalidFaceImage
	}
	return nil
}
