package qr_token

import (
	"context"
	"time"
)

// Codec トークンの署名・検証インターフェース
type Codec interface {
	// Issue 操作内容を署名し、ttl後に失効するトークンを作成
	Issue(payload Payload, ttl time.Duration) (*Token, error)

	// Verify 署名と有効期限を検証し、操作内容を復元（ErrTokenInvalid / ErrTokenExpired）
	Verify(raw string) (*Token, error)
}

// Registry 発行済み・未使用トークンの保留レジストリ
type Registry interface {
	// Register トークンを保留状態として登録し、ttl後に自動削除する
	Register(ctx context.Context, raw string, ttl time.Duration) error

	// IsPending 保留中かどうか（期限切れは掃除前でもfalse）
	IsPending(ctx context.Context, raw string) (bool, error)

	// Retire トークンを取り除く。同時呼び出しのうち1つだけがtrueを受け取る
	Retire(ctx context.Context, raw string) (bool, error)

	// Sweep 期限切れのエントリを削除し、削除件数を返す
	Sweep(ctx context.Context) (int, error)

	// Len 保留中のエントリ数を返す
	Len(ctx context.Context) (int, error)
}
