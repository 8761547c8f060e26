package qrcode

import (
	"encoding/base64"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

// DefaultSize 生成するPNGの一辺のピクセル数
const DefaultSize = 256

// Encoder トークン文字列をQRコード画像に変換する
type Encoder struct {
	size  int
	level goqrcode.RecoveryLevel
}

// NewEncoder 新しいEncoderを作成（size<=0の場合はDefaultSize）
func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &Encoder{
		size:  size,
		level: goqrcode.Medium,
	}
}

// PNG QRコードのPNG画像を返す
func (e *Encoder) PNG(content string) ([]byte, error) {
	png, err := goqrcode.Encode(content, e.level, e.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

// DataURL PNG画像をdata URLとして返す（JSONレスポンスにそのまま埋め込める）
func (e *Encoder) DataURL(content string) (string, error) {
	png, err := e.PNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
