package balance

// ShopBalance 店舗ごとの残高
type ShopBalance struct {
	ShopID string
	Points int64
}

// GetClientBalancesResponse 顧客の残高一覧
type GetClientBalancesResponse struct {
	ClientID string
	Balances []ShopBalance // 店舗ID順
}

// GetClientBalanceRequest 店舗が顧客の残高を照会するリクエスト
type GetClientBalanceRequest struct {
	ClientID string
}

// GetClientBalanceResponse 店舗における顧客の残高
type GetClientBalanceResponse struct {
	ClientID string
	ShopID   string
	Points   int64
}
