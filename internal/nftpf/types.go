package nftpf

import "time"

// Project holds relevant collection data from the NFT Price Floor API
type Project struct {
	Slug          string  `json:"slug"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Blockchain    string  `json:"blockchain"`
	FloorPriceETH float64 `json:"floor_price_eth"`
	FloorPriceUSD float64 `json:"floor_price_usd"`
	Volume24h     float64 `json:"volume_24h"`
	MarketCapETH  float64 `json:"market_cap_eth"`
	TotalSupply   int64   `json:"total_supply"`
}

// ProjectsResponse is the paginated projects listing payload
type ProjectsResponse struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
}

// Sale holds a single top-sale record
type Sale struct {
	ProjectName string    `json:"project_name"`
	Slug        string    `json:"slug"`
	TokenID     string    `json:"token_id"`
	PriceETH    float64   `json:"price_eth"`
	PriceUSD    float64   `json:"price_usd"`
	SoldAt      time.Time `json:"sold_at"`
}
