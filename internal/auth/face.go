package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/hitoshi/attendman/internal/model"
)

// FaceMatcher は顔画像から従業員を特定するインターフェース。
// 一致する従業員がいない場合は空文字を返す。
type FaceMatcher interface {
	Match(ctx context.Context, sample string) (employeeID string, err error)
}

// FaceDigestFinder は顔データのダイジェストで従業員を検索するインターフェース。
type FaceDigestFinder interface {
	FindByFaceDigest(ctx context.Context, digest string) (*model.Employee, error)
}

// FaceDigest は顔データのSHA-256ダイジェスト（16進）を返す。
func FaceDigest(sample string) string {
	sum := sha256.Sum256([]byte(sample))
	return hex.EncodeToString(sum[:])
}

// DigestFaceMatcher は登録時と同一の画像データのみを一致とみなす照合器。
// 顔認識エンジンを導入する際はFaceMatcherの別実装に差し替える。
type DigestFaceMatcher struct {
	finder FaceDigestFinder
}

// NewDigestFaceMatcher はDigestFaceMatcherを生成する。
func NewDigestFaceMatcher(finder FaceDigestFinder) *DigestFaceMatcher {
	return &DigestFaceMatcher{finder: finder}
}

// Match は画像データのダイジェストが一致する従業員IDを返す。
func (m *DigestFaceMatcher) Match(ctx context.Context, sample string) (string, error) {
	if sample == "" {
		return "", nil
	}
	e, err := m.finder.FindByFaceDigest(ctx, FaceDigest(sample))
	if err != nil {
		return "", fmt.Errorf("failed to match face: %w", err)
	}
	if e == nil {
		return "", nil
	}
	return e.EmployeeID, nil
}

var _ FaceMatcher = (*DigestFaceMatcher)(nil)
