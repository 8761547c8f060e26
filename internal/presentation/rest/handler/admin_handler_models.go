package handler

// PendingTokensResponse 保留トークン数レスポンス
// @Description 保留トークン数レスポンス
type PendingTokensResponse struct {
	Pending int `json:"pending" example:"12"`
}

// SweepResponse 掃除結果レスポンス
// @Description 掃除結果レスポンス
type SweepResponse struct {
	Removed int `json:"removed" example:"3"`
	Pending int `json:"pending" example:"9"`
}
