package handler

// ShopPoints 店舗ごとのポイント残高
// @Description 店舗ごとのポイント残高
type ShopPoints struct {
	ShopID string `json:"shop_id" example:"shop-a"`
	Points int64  `json:"points" example:"120"`
}

// ClientPointsResponse 顧客のポイント残高一覧
// @Description 顧客のポイント残高一覧
type ClientPointsResponse struct {
	ClientID string       `json:"client_id" example:"client-1"`
	Balances []ShopPoints `json:"balances"`
}

// ShopClientPointsResponse 店舗における顧客のポイント残高
// @Description 店舗における顧客のポイント残高
type ShopClientPointsResponse struct {
	ClientID string `json:"client_id" example:"client-1"`
	ShopID   string `json:"shop_id" example:"shop-a"`
	Points   int64  `json:"points" example:"120"`
}
