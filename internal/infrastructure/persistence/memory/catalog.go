package memory

import (
	"context"
	"sync"

	"points-server/internal/domain/catalog"
	"points-server/internal/infrastructure/seed"
)

// Catalog 初期データから構築するCatalogRepositoryとAccountDirectory
type Catalog struct {
	mu       sync.RWMutex
	products map[string]*catalog.Product
	prizes   map[string]*catalog.Prize
	clients  map[string]bool
}

// NewCatalog 初期データからCatalogを作成（sはnil可）
func NewCatalog(s *seed.Seed) (*Catalog, error) {
	c := &Catalog{
		products: make(map[string]*catalog.Product),
		prizes:   make(map[string]*catalog.Prize),
		clients:  make(map[string]bool),
	}
	if s == nil {
		return c, nil
	}
	for _, id := range s.Clients {
		c.clients[id] = true
	}
	for _, p := range s.Products {
		if err := c.AddProduct(p.ID, p.ShopID, p.Points); err != nil {
			return nil, err
		}
	}
	for _, p := range s.Prizes {
		if err := c.AddPrize(p.ID, p.ShopID, p.Points); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddClient 顧客を追加
func (c *Catalog) AddClient(clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients[clientID] = true
}

// AddProduct 商品を追加
func (c *Catalog) AddProduct(productID, shopID string, pointsPerUnit int64) error {
	p, err := catalog.NewProduct(productID, shopID, pointsPerUnit)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[productID] = p
	return nil
}

// AddPrize 景品を追加
func (c *Catalog) AddPrize(prizeID, shopID string, cost int64) error {
	p, err := catalog.NewPrize(prizeID, shopID, cost)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prizes[prizeID] = p
	return nil
}

// RemoveProduct 商品を削除
func (c *Catalog) RemoveProduct(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, productID)
}

// FindProduct 商品を取得
func (c *Catalog) FindProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[productID]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

// FindPrize 景品を取得
func (c *Catalog) FindPrize(ctx context.Context, prizeID string) (*catalog.Prize, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.prizes[prizeID]
	if !ok {
		return nil, catalog.ErrPrizeNotFound
	}
	return p, nil
}

// ClientExists 顧客が存在するか確認
func (c *Catalog) ClientExists(ctx context.Context, clientID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clients[clientID], nil
}
