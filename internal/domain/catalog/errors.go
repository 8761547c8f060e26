package catalog

import "errors"

var (
	// ErrInvalidProductID 商品IDが無効
	ErrInvalidProductID = errors.New("invalid product id")
	// ErrInvalidPrizeID 景品IDが無効
	ErrInvalidPrizeID = errors.New("invalid prize id")
	// ErrInvalidPoints ポイント値が無効
	ErrInvalidPoints = errors.New("invalid points value")
	// ErrProductNotFound 商品が見つからない
	ErrProductNotFound = errors.New("product not found")
	// ErrPrizeNotFound 景品が見つからない
	ErrPrizeNotFound = errors.New("prize not found")
	// ErrNotOwnedByShop 指定店舗の所有物ではない
	ErrNotOwnedByShop = errors.New("item not owned by shop")
)
